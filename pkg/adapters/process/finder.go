package process

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// Finder implements ports.SegmentFinder by running an external tool that prints the
// segments of the structure as a JSON array on stdout.
type Finder struct {
	runner *Runner
	tool   string
}

// NewFinder creates a finder backed by the registered tool.
func NewFinder(runner *Runner, tool string) *Finder {
	return &Finder{runner: runner, tool: tool}
}

func (f *Finder) FindSegments(ctx context.Context, structureFile string) ([]*domain.Segment, error) {
	res, err := f.runner.Execute(ctx, ToolCall{
		Name: f.tool,
		Args: map[string]any{"structure": structureFile},
	})
	if err != nil {
		return nil, fmt.Errorf("finder %s: %w: %w", f.tool, domain.ErrCollaborator, err)
	}
	if res.IsError {
		return nil, fmt.Errorf("finder %s: %s: %w", f.tool, res.Error, domain.ErrCollaborator)
	}

	var segments []*domain.Segment
	if err := json.Unmarshal([]byte(res.Stdout), &segments); err != nil {
		return nil, fmt.Errorf("finder %s printed invalid segments: %w: %w", f.tool, domain.ErrCollaborator, err)
	}
	for i, seg := range segments {
		if seg == nil {
			return nil, fmt.Errorf("finder %s printed a null segment at %d: %w", f.tool, i, domain.ErrCollaborator)
		}
		if seg.Identifier == "" {
			seg.Identifier = fmt.Sprintf("loop_%d", i+1)
		}
		if seg.ParentStructureFile == "" {
			seg.ParentStructureFile = structureFile
		}
		if err := seg.Validate(); err != nil {
			return nil, fmt.Errorf("finder %s: %w", f.tool, err)
		}
	}
	return segments, nil
}
