package evaluate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel() *domain.SegmentModel {
	return &domain.SegmentModel{Identifier: "seg1", TrialID: "t1", Scores: domain.Scores{}}
}

func TestPipeline_ScorersRunInOrderAndRecordErrors(t *testing.T) {
	var order []string
	s1 := evaluate.ScorerFunc("first", func(_ context.Context, m *domain.SegmentModel) error {
		order = append(order, "first")
		m.Scores["first"] = 1.0
		return nil
	})
	s2 := evaluate.ScorerFunc("broken", func(_ context.Context, m *domain.SegmentModel) error {
		order = append(order, "broken")
		return errors.New("tool crashed")
	})
	s3 := evaluate.ScorerFunc("third", func(_ context.Context, m *domain.SegmentModel) error {
		order = append(order, "third")
		m.Scores["third"] = m.Scores["first"].(float64) + 1
		return nil
	})

	p := evaluate.NewPipeline([]evaluate.Scorer{s1, s2, s3}, nil)
	m := newModel()
	p.Score(context.Background(), m)

	assert.Equal(t, []string{"first", "broken", "third"}, order)
	assert.Equal(t, 1.0, m.Scores["first"])
	assert.Equal(t, 2.0, m.Scores["third"])
	assert.Equal(t, "tool crashed", m.Scores["broken.error"])
}

func TestPipeline_ScoreInitializesNilScores(t *testing.T) {
	s := evaluate.ScorerFunc("x", func(_ context.Context, m *domain.SegmentModel) error {
		m.Scores["x"] = 1
		return nil
	})
	m := &domain.SegmentModel{}
	evaluate.NewPipeline([]evaluate.Scorer{s}, nil).Score(context.Background(), m)
	assert.Equal(t, 1, m.Scores["x"])
}

func TestPipeline_FilterShortCircuits(t *testing.T) {
	calls := map[string]int{}
	mk := func(id string, result bool) evaluate.Filter {
		return evaluate.FilterFunc(id, func(context.Context, *domain.SegmentModel) bool {
			calls[id]++
			return result
		})
	}
	p := evaluate.NewPipeline(nil, []evaluate.Filter{mk("pass", true), mk("reject", false), mk("never", true)})

	v := p.Filter(context.Background(), newModel())

	assert.False(t, v.Accepted)
	assert.Equal(t, 2, v.Invoked)
	assert.Equal(t, "reject", v.RejectedBy)
	assert.Equal(t, 1, calls["pass"])
	assert.Equal(t, 1, calls["reject"])
	assert.Zero(t, calls["never"])
}

func TestPipeline_AllFiltersPass(t *testing.T) {
	pass := func(context.Context, *domain.SegmentModel) bool { return true }
	p := evaluate.NewPipeline(nil, []evaluate.Filter{
		evaluate.FilterFunc("a", pass),
		evaluate.FilterFunc("b", pass),
	})

	v := p.Filter(context.Background(), newModel())
	assert.True(t, v.Accepted)
	assert.Equal(t, 2, v.Invoked)
	assert.Empty(t, v.RejectedBy)
}

func TestPipeline_NoFiltersAccepts(t *testing.T) {
	v := evaluate.NewPipeline(nil, nil).Filter(context.Background(), newModel())
	assert.True(t, v.Accepted)
	assert.Zero(t, v.Invoked)
}

func TestPipeline_FilterErrorRejects(t *testing.T) {
	f, err := evaluate.NewRequireScores("", evaluate.Config{"keys": []string{"missing"}})
	require.NoError(t, err)

	v := evaluate.NewPipeline(nil, []evaluate.Filter{f}).Filter(context.Background(), newModel())
	assert.False(t, v.Accepted)
	assert.Equal(t, evaluate.KindRequireScores, v.RejectedBy)
	assert.ErrorContains(t, v.Err, "missing")
}

func TestPipeline_FiltersCannotWriteScores(t *testing.T) {
	sneaky := evaluate.FilterFunc("sneaky", func(_ context.Context, m *domain.SegmentModel) bool {
		m.Scores["injected"] = true
		return true
	})
	m := newModel()
	evaluate.NewPipeline(nil, []evaluate.Filter{sneaky}).Filter(context.Background(), m)
	assert.NotContains(t, m.Scores, "injected")
}

func TestPipeline_EvaluateScoresThenFilters(t *testing.T) {
	s := evaluate.ScorerFunc("energy", func(_ context.Context, m *domain.SegmentModel) error {
		m.Scores["energy"] = -12.5
		return nil
	})
	f, err := evaluate.NewThreshold("low_energy", evaluate.Config{"key": "energy", "max": 0})
	require.NoError(t, err)

	v := evaluate.NewPipeline([]evaluate.Scorer{s}, []evaluate.Filter{f}).Evaluate(context.Background(), newModel())
	assert.True(t, v.Accepted)
	assert.Equal(t, 1, v.Invoked)
}
