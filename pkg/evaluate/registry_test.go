package evaluate_test

import (
	"context"
	"testing"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Kinds(t *testing.T) {
	r := evaluate.DefaultRegistry()
	assert.Equal(t, []string{"atom_count"}, r.ScorerKinds())
	assert.Equal(t, []string{"no_errors", "require_scores", "threshold"}, r.FilterKinds())
}

func TestRegistry_BuildFilters_PreservesOrderAndSkipsDisabled(t *testing.T) {
	disabled := false
	r := evaluate.DefaultRegistry()
	filters, err := r.BuildFilters([]evaluate.Spec{
		{Kind: "no_errors"},
		{Kind: "threshold", Identifier: "off", Enabled: &disabled, Params: evaluate.Config{"key": "x", "min": 0}},
		{Kind: "require_scores", Identifier: "needs_rmsd", Params: evaluate.Config{"keys": []any{"rmsd"}}},
		{Kind: "threshold", Identifier: "also_off", Params: evaluate.Config{"key": "x", "min": 0, "enabled": false}},
		// Incomplete params are fine while disabled: the factory never runs.
		{Kind: "threshold", Identifier: "unfinished", Enabled: &disabled},
		{Kind: "require_scores", Params: evaluate.Config{"enabled": "false"}},
	})
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "no_errors", filters[0].Identifier())
	assert.Equal(t, "needs_rmsd", filters[1].Identifier())
}

func TestRegistry_BuildScorers_DisabledFactoryNotCalled(t *testing.T) {
	disabled := false
	calls := 0
	r := evaluate.NewRegistry()
	r.RegisterScorer("counted", func(id string, c evaluate.Config) (evaluate.Scorer, error) {
		calls++
		return evaluate.ScorerFunc(id, func(context.Context, *domain.SegmentModel) error { return nil }), nil
	})

	scorers, err := r.BuildScorers([]evaluate.Spec{
		{Kind: "counted", Identifier: "on"},
		{Kind: "counted", Identifier: "off", Enabled: &disabled},
	})
	require.NoError(t, err)
	require.Len(t, scorers, 1)
	assert.Equal(t, "on", scorers[0].Identifier())
	assert.Equal(t, 1, calls)
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := evaluate.DefaultRegistry()

	_, err := r.BuildScorers([]evaluate.Spec{{Kind: "nope"}})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = r.NewFilter(evaluate.Spec{Kind: "atom_count"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestRegistry_CustomKind(t *testing.T) {
	r := evaluate.NewRegistry()
	r.RegisterScorer("constant", func(id string, c evaluate.Config) (evaluate.Scorer, error) {
		return evaluate.ScorerFunc(id, func(_ context.Context, m *domain.SegmentModel) error {
			m.Scores[id] = c["value"]
			return nil
		}), nil
	})

	scorers, err := r.BuildScorers([]evaluate.Spec{{Kind: "constant", Identifier: "c", Params: evaluate.Config{"value": 7}}})
	require.NoError(t, err)
	require.Len(t, scorers, 1)

	m := &domain.SegmentModel{Scores: domain.Scores{}}
	require.NoError(t, scorers[0].Score(context.Background(), m))
	assert.Equal(t, 7, m.Scores["c"])
}
