package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/ports"
	"github.com/aretw0/loopbuild/pkg/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncAdapters(t *testing.T) {
	var gen ports.ModelGenerator = ports.GeneratorFunc(func(_ context.Context, seg *domain.Segment, trialID, workDir string) (*structure.Document, error) {
		return &structure.Document{Name: seg.Identifier + "/" + trialID + "@" + workDir}, nil
	})
	doc, err := gen.Generate(context.Background(), &domain.Segment{Identifier: "loop_0"}, "3", "/tmp/w")
	require.NoError(t, err)
	assert.Equal(t, "loop_0/3@/tmp/w", doc.Name)

	var finder ports.SegmentFinder = ports.FinderFunc(func(_ context.Context, path string) ([]*domain.Segment, error) {
		return []*domain.Segment{{Identifier: "loop_0", ParentStructureFile: path}}, nil
	})
	segs, err := finder.FindSegments(context.Background(), "x.cif")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "x.cif", segs[0].ParentStructureFile)
}
