package ports

import (
	"context"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// ReportStore persists build reports so that runs can be inspected afterwards.
type ReportStore interface {
	// Save persists the report under the given run ID, replacing any previous one.
	Save(ctx context.Context, runID string, report *domain.BuildReport) error

	// Load retrieves the report of a run.
	// Returns domain.ErrReportNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.BuildReport, error)

	// Delete removes the report of a run. Deleting an unknown run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the known run IDs.
	List(ctx context.Context) ([]string, error)
}
