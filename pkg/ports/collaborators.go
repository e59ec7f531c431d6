package ports

import (
	"context"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/structure"
)

// ModelGenerator produces a candidate structure containing newly placed atoms for a
// segment. The returned document covers the whole parent structure; the orchestrator
// trims it to the segment range.
type ModelGenerator interface {
	Generate(ctx context.Context, segment *domain.Segment, trialID, workDir string) (*structure.Document, error)
}

// SegmentFinder locates the missing regions of a parent structure file.
// The returned segments are in build order.
type SegmentFinder interface {
	FindSegments(ctx context.Context, structureFile string) ([]*domain.Segment, error)
}

// GeneratorFunc adapts a function to ModelGenerator.
type GeneratorFunc func(ctx context.Context, segment *domain.Segment, trialID, workDir string) (*structure.Document, error)

func (f GeneratorFunc) Generate(ctx context.Context, segment *domain.Segment, trialID, workDir string) (*structure.Document, error) {
	return f(ctx, segment, trialID, workDir)
}

// FinderFunc adapts a function to SegmentFinder.
type FinderFunc func(ctx context.Context, structureFile string) ([]*domain.Segment, error)

func (f FinderFunc) FindSegments(ctx context.Context, structureFile string) ([]*domain.Segment, error) {
	return f(ctx, structureFile)
}
