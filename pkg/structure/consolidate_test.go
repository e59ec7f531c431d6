package structure_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/loopbuild/internal/testutils"
	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segmentModel1 = `
data_cell
_cell.length_a 93.4570
_cell.length_b 93.4570
_cell.length_c 166.6790

loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.label_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.pdbx_PDB_model_num
ATOM 3250 N N GLU B 600 -7.9148 21.0821 35.5826 1
ATOM 3251 C CA GLU B 600 -9.4031 21.1704 36.1498 1
ATOM 3252 C CB GLU B 600 -8.8760 21.6280 37.4816 1
`

const segmentModel2 = `
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.label_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.pdbx_PDB_model_num
ATOM 3250 N N GLU B 600 -7.8856 21.1628 35.6874 1
ATOM 3251 C CA GLU B 600 -9.2370 21.0021 36.5602 1
ATOM 3252 C CB GLU B 600 -8.9416 21.4748 38.0327 1
`

func consolidate(t *testing.T, contents ...string) (string, structure.ConsolidateResult) {
	t.Helper()
	sources := make([]structure.Source, len(contents))
	for i, c := range contents {
		sources[i] = structure.Source{Name: "src", Reader: strings.NewReader(c)}
	}
	var buf bytes.Buffer
	res, err := structure.Consolidate(&buf, sources...)
	require.NoError(t, err)
	return buf.String(), res
}

func TestConsolidate_TwoSingleModelFiles(t *testing.T) {
	out, res := consolidate(t, segmentModel1, segmentModel2)

	assert.True(t, strings.HasPrefix(out, segmentModel1), "first file must be copied verbatim")
	assert.Equal(t, 1, strings.Count(out, "loop_"), "second file header must be dropped")
	assert.Equal(t, []string{"1", "1", "1", "2", "2", "2"}, testutils.ModelNumbers(out))
	assert.Contains(t, out, "ATOM 3250 N N GLU B 600 -7.8856 21.1628 35.6874 2\n")
	assert.Equal(t, 2, res.Sources)
	assert.Equal(t, 6, res.Atoms)
	assert.Equal(t, 2, res.LastModel)
}

func TestConsolidate_KSingleModelFiles(t *testing.T) {
	var contents []string
	for i := 0; i < 4; i++ {
		contents = append(contents, testutils.BuildCIF("k", testutils.ChainResidues("A", 1, 1)))
	}

	out, res := consolidate(t, contents...)

	doc, err := structure.Parse(strings.NewReader(out), "out.cif")
	require.NoError(t, err)
	models, err := doc.ModelNumbers()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, models)
	assert.Equal(t, 4, res.LastModel)
}

func TestConsolidate_MultiModelFilesUseCumulativeOffset(t *testing.T) {
	file1 := testutils.BuildCIF("f1", []testutils.Residue{
		{Chain: "A", SeqID: 1, Model: 1},
		{Chain: "A", SeqID: 1, Model: 2},
	})
	file2 := testutils.BuildCIF("f2", []testutils.Residue{
		{Chain: "A", SeqID: 1, Model: 1},
		{Chain: "A", SeqID: 1, Model: 2},
		{Chain: "A", SeqID: 1, Model: 3},
	})
	file3 := testutils.BuildCIF("f3", []testutils.Residue{
		{Chain: "A", SeqID: 1, Model: 1},
	})

	out, res := consolidate(t, file1, file2, file3)

	doc, err := structure.Parse(strings.NewReader(out), "out.cif")
	require.NoError(t, err)
	models, err := doc.ModelNumbers()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, models)
	assert.Equal(t, 6, res.LastModel)
	assert.Equal(t, 24, res.Atoms)
}

func TestConsolidate_FirstFileWithoutTrailingNewline(t *testing.T) {
	first := strings.TrimSuffix(segmentModel1, "\n")
	out, _ := consolidate(t, first, segmentModel2)
	assert.Equal(t, []string{"1", "1", "1", "2", "2", "2"}, testutils.ModelNumbers(out))
}

func TestConsolidate_FirstFileTrailerFollowsAppendedRows(t *testing.T) {
	trailer := "#\nloop_\n_pdbx_poly_seq_scheme.asym_id\nB\n#\n"
	file1 := testutils.BuildCIF("f1", testutils.ChainResidues("B", 600, 600)) + trailer
	file2 := testutils.BuildCIF("f2", testutils.ChainResidues("B", 600, 600)) + "#\n"

	out, res := consolidate(t, file1, file2)
	assert.True(t, strings.HasSuffix(out, trailer))
	assert.Equal(t, 1, strings.Count(out, "_pdbx_poly_seq_scheme.asym_id"))

	doc, err := structure.Parse(strings.NewReader(out), "out.cif")
	require.NoError(t, err)
	assert.Len(t, doc.Rows, res.Atoms)
	models, err := doc.ModelNumbers()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, models)
	assert.Equal(t, []string{"#", "loop_", "_pdbx_poly_seq_scheme.asym_id", "B", "#"}, doc.Trailer)
}

func TestConsolidateFiles_RoundTripsWrittenDocuments(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	for i := 0; i < 3; i++ {
		path := testutils.WriteFile(t, dir, fmt.Sprintf("m%d.cif", i),
			testutils.BuildCIF("m", testutils.ChainResidues("A", 10, 11))+"#\n")
		inputs = append(inputs, path)
	}
	out := filepath.Join(dir, "joined.cif")

	res, err := structure.ConsolidateFiles(inputs, out)
	require.NoError(t, err)

	doc, err := structure.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Atoms, doc.AtomCount())
	models, err := doc.ModelNumbers()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, models)
}

func TestConsolidate_ParseError(t *testing.T) {
	bad := strings.Replace(segmentModel2, "35.6874 1", "35.6874 one", 1)

	var buf bytes.Buffer
	_, err := structure.Consolidate(&buf,
		structure.Source{Name: "good.cif", Reader: strings.NewReader(segmentModel1)},
		structure.Source{Name: "bad.cif", Reader: strings.NewReader(bad)},
	)
	require.ErrorIs(t, err, domain.ErrParse)

	var pe *structure.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.cif", pe.Source)
	assert.Equal(t, 14, pe.Line)
	assert.Equal(t, "one", pe.Token)
}

func TestConsolidate_NoSources(t *testing.T) {
	_, err := structure.Consolidate(&bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestConsolidateFiles(t *testing.T) {
	dir := t.TempDir()
	in1 := testutils.WriteFile(t, dir, "m1.cif", segmentModel1)
	in2 := testutils.WriteFile(t, dir, "m2.cif", segmentModel2)
	out := filepath.Join(dir, "joined.cif")

	res, err := structure.ConsolidateFiles([]string{in1, in2}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LastModel)

	content := testutils.ReadFile(t, out)
	assert.True(t, strings.HasPrefix(content, segmentModel1))

	t.Run("Leaves no output on parse error", func(t *testing.T) {
		bad := testutils.WriteFile(t, dir, "bad.cif", strings.Replace(segmentModel2, "35.6874 1", "35.6874 -1", 1))
		target := filepath.Join(dir, "broken.cif")

		_, err := structure.ConsolidateFiles([]string{in1, bad}, target)
		assert.ErrorIs(t, err, domain.ErrParse)
		_, statErr := os.Stat(target)
		assert.True(t, os.IsNotExist(statErr))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), "tmp-"), "temp file left behind: %s", e.Name())
		}
	})

	t.Run("Missing input", func(t *testing.T) {
		_, err := structure.ConsolidateFiles([]string{filepath.Join(dir, "nope.cif")}, filepath.Join(dir, "x.cif"))
		assert.Error(t, err)
	})
}
