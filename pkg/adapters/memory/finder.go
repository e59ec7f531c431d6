package memory

import (
	"context"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// Finder implements ports.SegmentFinder over a fixed list of segments.
// Each call returns fresh copies bound to the requested structure file.
type Finder struct {
	segments []domain.Segment
}

// NewFinder creates a finder returning copies of segments.
func NewFinder(segments ...domain.Segment) *Finder {
	return &Finder{segments: segments}
}

func (f *Finder) FindSegments(ctx context.Context, structureFile string) ([]*domain.Segment, error) {
	out := make([]*domain.Segment, 0, len(f.segments))
	for _, s := range f.segments {
		seg := s
		seg.ResidueNames = append([]string(nil), s.ResidueNames...)
		seg.Models = nil
		if seg.ParentStructureFile == "" {
			seg.ParentStructureFile = structureFile
		}
		out = append(out, &seg)
	}
	return out, nil
}
