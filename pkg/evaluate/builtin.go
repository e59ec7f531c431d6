package evaluate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/structure"
)

// Built-in evaluator kinds.
const (
	KindAtomCount     = "atom_count"
	KindThreshold     = "threshold"
	KindNoErrors      = "no_errors"
	KindRequireScores = "require_scores"
)

// AtomCount records the number of atom rows of the model's structure file.
type AtomCount struct {
	Base
	key string
}

// NewAtomCount creates an atom_count scorer. Option: key (default "atom_count").
func NewAtomCount(identifier string, overrides Config) (*AtomCount, error) {
	base := NewBase(KindAtomCount, Config{"key": KindAtomCount}, overrides, identifier)
	var opts struct {
		Key string `mapstructure:"key"`
	}
	if err := base.config.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("%s: key must not be empty: %w", base.identifier, domain.ErrInvalidRequest)
	}
	return &AtomCount{Base: base, key: opts.Key}, nil
}

func (a *AtomCount) Score(_ context.Context, model *domain.SegmentModel) error {
	doc, err := structure.ReadFile(model.StructureFile)
	if err != nil {
		return err
	}
	model.Scores[a.key] = doc.AtomCount()
	return nil
}

// Threshold accepts a model whose numeric score lies within [min, max].
// Either bound may be omitted. A missing or non-numeric score is rejected.
type Threshold struct {
	Base
	key       string
	min, max  *float64
	inclusive bool
}

// NewThreshold creates a threshold filter. Options: key, min, max, inclusive (default true).
func NewThreshold(identifier string, overrides Config) (*Threshold, error) {
	base := NewBase(KindThreshold, Config{"inclusive": true}, overrides, identifier)
	var opts struct {
		Key       string   `mapstructure:"key"`
		Min       *float64 `mapstructure:"min"`
		Max       *float64 `mapstructure:"max"`
		Inclusive bool     `mapstructure:"inclusive"`
	}
	if err := base.config.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("%s: key is required: %w", base.identifier, domain.ErrInvalidRequest)
	}
	if opts.Min == nil && opts.Max == nil {
		return nil, fmt.Errorf("%s: at least one of min or max is required: %w", base.identifier, domain.ErrInvalidRequest)
	}
	if opts.Min != nil && opts.Max != nil && *opts.Min > *opts.Max {
		return nil, fmt.Errorf("%s: min %v is greater than max %v: %w", base.identifier, *opts.Min, *opts.Max, domain.ErrInvalidRequest)
	}
	return &Threshold{Base: base, key: opts.Key, min: opts.Min, max: opts.Max, inclusive: opts.Inclusive}, nil
}

func (t *Threshold) Filter(_ context.Context, model *domain.SegmentModel) (bool, error) {
	v, ok := model.Scores.Float(t.key)
	if !ok {
		return false, nil
	}
	if t.min != nil && (v < *t.min || (!t.inclusive && v == *t.min)) {
		return false, nil
	}
	if t.max != nil && (v > *t.max || (!t.inclusive && v == *t.max)) {
		return false, nil
	}
	return true, nil
}

// NoErrors rejects a model for which any scorer recorded a failure.
type NoErrors struct {
	Base
}

// NewNoErrors creates a no_errors filter.
func NewNoErrors(identifier string, overrides Config) (*NoErrors, error) {
	return &NoErrors{Base: NewBase(KindNoErrors, nil, overrides, identifier)}, nil
}

func (n *NoErrors) Filter(_ context.Context, model *domain.SegmentModel) (bool, error) {
	return len(model.Scores.Errors()) == 0, nil
}

// RequireScores rejects a model unless every listed score key is present.
type RequireScores struct {
	Base
	keys []string
}

// NewRequireScores creates a require_scores filter. Option: keys.
func NewRequireScores(identifier string, overrides Config) (*RequireScores, error) {
	base := NewBase(KindRequireScores, nil, overrides, identifier)
	var opts struct {
		Keys []string `mapstructure:"keys"`
	}
	if err := base.config.Decode(&opts); err != nil {
		return nil, err
	}
	if len(opts.Keys) == 0 {
		return nil, fmt.Errorf("%s: keys must not be empty: %w", base.identifier, domain.ErrInvalidRequest)
	}
	return &RequireScores{Base: base, keys: opts.Keys}, nil
}

func (r *RequireScores) Filter(_ context.Context, model *domain.SegmentModel) (bool, error) {
	var missing []string
	for _, k := range r.keys {
		if _, ok := model.Scores[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return false, fmt.Errorf("missing scores: %s", strings.Join(missing, ", "))
	}
	return true, nil
}
