package evaluate_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/loopbuild/internal/testutils"
	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomCount(t *testing.T) {
	dir := t.TempDir()
	path := testutils.WriteFile(t, dir, "model.cif", testutils.BuildCIF("model", testutils.ChainResidues("A", 1, 3)))

	s, err := evaluate.NewAtomCount("", nil)
	require.NoError(t, err)
	assert.Equal(t, "atom_count", s.Identifier())

	m := &domain.SegmentModel{StructureFile: path, Scores: domain.Scores{}}
	require.NoError(t, s.Score(context.Background(), m))
	assert.Equal(t, 12, m.Scores["atom_count"])
}

func TestAtomCount_CustomKeyAndMissingFile(t *testing.T) {
	s, err := evaluate.NewAtomCount("atoms", evaluate.Config{"key": "n_atoms"})
	require.NoError(t, err)

	m := &domain.SegmentModel{StructureFile: filepath.Join(t.TempDir(), "absent.cif"), Scores: domain.Scores{}}
	assert.Error(t, s.Score(context.Background(), m))
	assert.NotContains(t, m.Scores, "n_atoms")
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		name   string
		config evaluate.Config
		value  any
		want   bool
	}{
		{"within", evaluate.Config{"key": "s", "min": 1, "max": 3}, 2.0, true},
		{"at min inclusive", evaluate.Config{"key": "s", "min": 1}, 1, true},
		{"at max exclusive", evaluate.Config{"key": "s", "max": 3, "inclusive": false}, 3.0, false},
		{"below min", evaluate.Config{"key": "s", "min": 1}, 0.5, false},
		{"above max", evaluate.Config{"key": "s", "max": 3}, 4, false},
		{"missing score", evaluate.Config{"key": "other", "min": 0}, 1.0, false},
		{"non numeric", evaluate.Config{"key": "s", "min": 0}, "high", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := evaluate.NewThreshold("", tt.config)
			require.NoError(t, err)

			m := &domain.SegmentModel{Scores: domain.Scores{"s": tt.value}}
			ok, err := f.Filter(context.Background(), m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestThreshold_InvalidConfig(t *testing.T) {
	_, err := evaluate.NewThreshold("", evaluate.Config{"min": 1})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = evaluate.NewThreshold("", evaluate.Config{"key": "s"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = evaluate.NewThreshold("", evaluate.Config{"key": "s", "min": 5, "max": 1})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestNoErrors(t *testing.T) {
	f, err := evaluate.NewNoErrors("clean", nil)
	require.NoError(t, err)

	ok, err := f.Filter(context.Background(), &domain.SegmentModel{Scores: domain.Scores{"a": 1}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Filter(context.Background(), &domain.SegmentModel{Scores: domain.Scores{"a.error": "boom"}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluator_ConfigIsImmutable(t *testing.T) {
	f, err := evaluate.NewThreshold("t", evaluate.Config{"key": "s", "min": 1})
	require.NoError(t, err)

	cfg := f.Config()
	cfg["min"] = 100

	assert.Equal(t, 1, f.Config()["min"])
	assert.Equal(t, true, f.Config()["enabled"])
	assert.Equal(t, true, f.Config()["inclusive"])
}

func TestEvaluator_String(t *testing.T) {
	f, err := evaluate.NewThreshold("rmsd_cutoff", evaluate.Config{"key": "rmsd", "max": 2.5})
	require.NoError(t, err)
	assert.Equal(t, "threshold(rmsd_cutoff, enabled=true, inclusive=true, key=rmsd, max=2.5)", f.String())
}
