package evaluate

import (
	"context"
	"fmt"
	"maps"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// Evaluator is the part shared by scorers and filters.
type Evaluator interface {
	Identifier() string
	Config() Config
}

// Scorer computes quantities for a model and stores them in model.Scores.
// A returned error is recorded in the score mapping by the Pipeline; it never
// stops the build.
type Scorer interface {
	Evaluator
	Score(ctx context.Context, model *domain.SegmentModel) error
}

// Filter decides whether a model is acceptable. It must not modify the model.
// An error counts as a rejection.
type Filter interface {
	Evaluator
	Filter(ctx context.Context, model *domain.SegmentModel) (bool, error)
}

// Base carries the identifier and the merged configuration of an evaluator.
// Embed it in concrete scorers and filters.
type Base struct {
	kind       string
	identifier string
	config     Config
}

// NewBase merges BaseDefaults, kindDefaults and overrides. An empty identifier
// defaults to the kind name.
func NewBase(kind string, kindDefaults, overrides Config, identifier string) Base {
	if identifier == "" {
		identifier = kind
	}
	return Base{
		kind:       kind,
		identifier: identifier,
		config:     MergeConfig(BaseDefaults, kindDefaults, overrides),
	}
}

// Kind returns the evaluator kind name.
func (b Base) Kind() string { return b.kind }

// Identifier returns the display identifier.
func (b Base) Identifier() string { return b.identifier }

// Config returns a copy of the merged configuration.
func (b Base) Config() Config { return maps.Clone(b.config) }

func (b Base) String() string {
	if len(b.config) == 0 {
		return fmt.Sprintf("%s(%s)", b.kind, b.identifier)
	}
	return fmt.Sprintf("%s(%s, %s)", b.kind, b.identifier, b.config)
}

type scorerFunc struct {
	Base
	fn func(context.Context, *domain.SegmentModel) error
}

func (s *scorerFunc) Score(ctx context.Context, model *domain.SegmentModel) error {
	return s.fn(ctx, model)
}

// ScorerFunc adapts a plain function to the Scorer interface.
func ScorerFunc(identifier string, fn func(context.Context, *domain.SegmentModel) error) Scorer {
	return &scorerFunc{Base: NewBase("ScorerFunc", nil, nil, identifier), fn: fn}
}

type filterFunc struct {
	Base
	fn func(context.Context, *domain.SegmentModel) bool
}

func (f *filterFunc) Filter(ctx context.Context, model *domain.SegmentModel) (bool, error) {
	return f.fn(ctx, model), nil
}

// FilterFunc adapts a plain predicate to the Filter interface.
func FilterFunc(identifier string, fn func(context.Context, *domain.SegmentModel) bool) Filter {
	return &filterFunc{Base: NewBase("FilterFunc", nil, nil, identifier), fn: fn}
}
