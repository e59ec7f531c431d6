package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AtomSiteColumns are the _atom_site columns written by BuildCIF, in order.
var AtomSiteColumns = []string{
	"group_PDB", "id", "type_symbol", "label_atom_id", "label_alt_id",
	"label_comp_id", "label_asym_id", "label_entity_id", "label_seq_id",
	"pdbx_PDB_ins_code", "Cartn_x", "Cartn_y", "Cartn_z", "occupancy",
	"B_iso_or_equiv", "Cartn_x_esd", "Cartn_y_esd", "Cartn_z_esd",
	"occupancy_esd", "B_iso_or_equiv_esd", "pdbx_formal_charge", "auth_seq_id",
	"auth_comp_id", "auth_asym_id", "auth_atom_id", "pdbx_PDB_model_num",
}

// Residue describes the atoms BuildCIF writes for one residue.
type Residue struct {
	Chain string
	SeqID int
	Name  string
	Atoms []string
	Model int
}

// Backbone is the atom list used when a Residue declares none.
var Backbone = []string{"N", "CA", "C", "O"}

// Header returns the data block and cell lines preceding the atom table.
func Header(block string) string {
	return strings.Join([]string{
		"data_" + block,
		"_cell.length_a 93.4570",
		"_cell.length_b 93.4570",
		"_cell.length_c 166.6790",
		"_cell.angle_alpha 90.0000",
		"_cell.angle_beta 90.0000",
		"_cell.angle_gamma 90.0000",
		"",
	}, "\n") + "\n"
}

// AtomSiteLoop returns the loop_ keyword and the _atom_site column declarations.
func AtomSiteLoop() string {
	var b strings.Builder
	b.WriteString("loop_\n")
	for _, c := range AtomSiteColumns {
		b.WriteString("_atom_site." + c + "\n")
	}
	return b.String()
}

// AtomLine renders one atom row.
func AtomLine(id int, chain string, seq int, comp, atom string, model int) string {
	return fmt.Sprintf("ATOM %d %s %s . %s %s ? %d . %.4f %.4f %.4f 0.0 0.0 ? ? ? ? ? . %d %s %s %s %d",
		id, atom[:1], atom, comp, chain, seq,
		float64(id)*0.1, float64(seq)*0.01, -float64(id)*0.05,
		seq, comp, chain, atom, model)
}

// BuildCIF renders a complete structural file for the given residues.
func BuildCIF(block string, residues []Residue) string {
	var b strings.Builder
	b.WriteString(Header(block))
	b.WriteString(AtomSiteLoop())
	id := 1
	for _, r := range residues {
		atoms := r.Atoms
		if len(atoms) == 0 {
			atoms = Backbone
		}
		model := r.Model
		if model == 0 {
			model = 1
		}
		name := r.Name
		if name == "" {
			name = "GLY"
		}
		for _, a := range atoms {
			b.WriteString(AtomLine(id, r.Chain, r.SeqID, name, a, model))
			b.WriteString("\n")
			id++
		}
	}
	return b.String()
}

// ChainResidues returns consecutive residues first..last of a chain.
func ChainResidues(chain string, first, last int) []Residue {
	out := make([]Residue, 0, last-first+1)
	for s := first; s <= last; s++ {
		out = append(out, Residue{Chain: chain, SeqID: s})
	}
	return out
}

// WriteFile writes content into dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write fixture")
	return path
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "Failed to read %s", path)
	return string(data)
}

// ModelNumbers returns the trailing model-number field of every ATOM line in content.
func ModelNumbers(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "ATOM ") {
			continue
		}
		f := strings.Fields(line)
		out = append(out, f[len(f)-1])
	}
	return out
}
