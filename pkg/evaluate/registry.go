package evaluate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// ScorerFactory builds a scorer of one kind from its identifier and overrides.
type ScorerFactory func(identifier string, overrides Config) (Scorer, error)

// FilterFactory builds a filter of one kind from its identifier and overrides.
type FilterFactory func(identifier string, overrides Config) (Filter, error)

// Spec declares one evaluator in a configuration file.
type Spec struct {
	Kind       string `yaml:"kind" json:"kind"`
	Identifier string `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	// Enabled overrides the "enabled" option. A disabled evaluator is not built.
	Enabled *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Params  Config `yaml:"params,omitempty" json:"params,omitempty"`
}

func (s Spec) overrides() Config {
	out := make(Config, len(s.Params)+1)
	for k, v := range s.Params {
		out[k] = v
	}
	if s.Enabled != nil {
		out["enabled"] = *s.Enabled
	}
	return out
}

// enabled resolves the "enabled" option from the base defaults and the spec's
// overrides, without building the evaluator.
func (s Spec) enabled() bool {
	return MergeConfig(BaseDefaults, nil, s.overrides()).Bool("enabled", true)
}

// Registry maps evaluator kinds to their factories.
type Registry struct {
	mu      sync.RWMutex
	scorers map[string]ScorerFactory
	filters map[string]FilterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scorers: make(map[string]ScorerFactory),
		filters: make(map[string]FilterFactory),
	}
}

// DefaultRegistry creates a registry holding the built-in kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterScorer(KindAtomCount, func(id string, c Config) (Scorer, error) { return NewAtomCount(id, c) })
	r.RegisterFilter(KindThreshold, func(id string, c Config) (Filter, error) { return NewThreshold(id, c) })
	r.RegisterFilter(KindNoErrors, func(id string, c Config) (Filter, error) { return NewNoErrors(id, c) })
	r.RegisterFilter(KindRequireScores, func(id string, c Config) (Filter, error) { return NewRequireScores(id, c) })
	return r
}

// RegisterScorer adds a scorer kind. An existing kind is overwritten.
func (r *Registry) RegisterScorer(kind string, fn ScorerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scorers[kind] = fn
}

// RegisterFilter adds a filter kind. An existing kind is overwritten.
func (r *Registry) RegisterFilter(kind string, fn FilterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[kind] = fn
}

// ScorerKinds returns the registered scorer kinds, sorted.
func (r *Registry) ScorerKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.scorers)
}

// FilterKinds returns the registered filter kinds, sorted.
func (r *Registry) FilterKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.filters)
}

// NewScorer builds one scorer.
func (r *Registry) NewScorer(spec Spec) (Scorer, error) {
	r.mu.RLock()
	fn, ok := r.scorers[spec.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown scorer kind %q: %w", spec.Kind, domain.ErrInvalidRequest)
	}
	return fn(spec.Identifier, spec.overrides())
}

// NewFilter builds one filter.
func (r *Registry) NewFilter(spec Spec) (Filter, error) {
	r.mu.RLock()
	fn, ok := r.filters[spec.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown filter kind %q: %w", spec.Kind, domain.ErrInvalidRequest)
	}
	return fn(spec.Identifier, spec.overrides())
}

// BuildScorers builds the enabled scorers, preserving order. Disabled specs are
// skipped before their factory runs.
func (r *Registry) BuildScorers(specs []Spec) ([]Scorer, error) {
	out := make([]Scorer, 0, len(specs))
	for i, spec := range specs {
		if !spec.enabled() {
			continue
		}
		s, err := r.NewScorer(spec)
		if err != nil {
			return nil, fmt.Errorf("scorer #%d: %w", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// BuildFilters builds the enabled filters, preserving order.
func (r *Registry) BuildFilters(specs []Spec) ([]Filter, error) {
	out := make([]Filter, 0, len(specs))
	for i, spec := range specs {
		if !spec.enabled() {
			continue
		}
		f, err := r.NewFilter(spec)
		if err != nil {
			return nil, fmt.Errorf("filter #%d: %w", i+1, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
