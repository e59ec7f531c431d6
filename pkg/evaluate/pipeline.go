package evaluate

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// Verdict is the outcome of running the filters over a model.
type Verdict struct {
	Accepted bool
	// Invoked is the number of filters that ran before the verdict was reached.
	Invoked int
	// RejectedBy is the identifier of the rejecting filter, empty when accepted.
	RejectedBy string
	// Err is the error returned by the rejecting filter, if any.
	Err error
}

// Pipeline runs scorers and filters in configuration order.
type Pipeline struct {
	scorers []Scorer
	filters []Filter
	logger  *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used to report scorer and filter failures.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline returns a pipeline over the given evaluators. Both slices are copied.
func NewPipeline(scorers []Scorer, filters []Filter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		scorers: append([]Scorer(nil), scorers...),
		filters: append([]Filter(nil), filters...),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scorers returns the configured scorers.
func (p *Pipeline) Scorers() []Scorer { return append([]Scorer(nil), p.scorers...) }

// Filters returns the configured filters.
func (p *Pipeline) Filters() []Filter { return append([]Filter(nil), p.filters...) }

// Score runs every scorer in order. A failing scorer is recorded under
// domain.ErrorKey(identifier) and the remaining scorers still run.
func (p *Pipeline) Score(ctx context.Context, model *domain.SegmentModel) {
	if model.Scores == nil {
		model.Scores = domain.Scores{}
	}
	for _, s := range p.scorers {
		start := time.Now()
		if err := s.Score(ctx, model); err != nil {
			model.Scores[domain.ErrorKey(s.Identifier())] = err.Error()
			p.logger.Warn("Scorer failed",
				"scorer", s.Identifier(),
				"segment", model.Identifier,
				"trial", model.TrialID,
				"err", err)
			continue
		}
		p.logger.Debug("Scorer finished",
			"scorer", s.Identifier(),
			"trial", model.TrialID,
			"duration", time.Since(start))
	}
}

// Filter runs the filters in order and stops at the first rejection. Filters see a
// copy of the model so they cannot alter its scores.
func (p *Pipeline) Filter(ctx context.Context, model *domain.SegmentModel) Verdict {
	view := *model
	for i, f := range p.filters {
		view.Scores = model.Scores.Clone()
		ok, err := f.Filter(ctx, &view)
		if err != nil {
			p.logger.Warn("Filter failed",
				"filter", f.Identifier(),
				"segment", model.Identifier,
				"trial", model.TrialID,
				"err", err)
			return Verdict{Invoked: i + 1, RejectedBy: f.Identifier(), Err: err}
		}
		if !ok {
			return Verdict{Invoked: i + 1, RejectedBy: f.Identifier()}
		}
	}
	return Verdict{Accepted: true, Invoked: len(p.filters)}
}

// Evaluate scores the model and then filters it.
func (p *Pipeline) Evaluate(ctx context.Context, model *domain.SegmentModel) Verdict {
	p.Score(ctx, model)
	return p.Filter(ctx, model)
}
