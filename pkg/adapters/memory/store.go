package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.BuildReport
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.BuildReport),
	}
}

// Save stores a copy of the report.
func (s *Store) Save(ctx context.Context, runID string, report *domain.BuildReport) error {
	copied := cloneReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = copied
	return nil
}

// Load returns a copy of the stored report so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, runID string) (*domain.BuildReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return cloneReport(report), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns the stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	sort.Strings(runs)
	return runs, nil
}

func cloneReport(r *domain.BuildReport) *domain.BuildReport {
	out := *r
	out.Segments = make([]domain.SegmentReport, len(r.Segments))
	for i, seg := range r.Segments {
		seg.Models = append([]domain.ModelSummary(nil), seg.Models...)
		for j := range seg.Models {
			seg.Models[j].Scores = seg.Models[j].Scores.Clone()
		}
		out.Segments[i] = seg
	}
	return &out
}
