package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/loopbuild/pkg/domain"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
}

func TestProgress_Hooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := NewProgress(&buf, false).Hooks()
	ctx := context.Background()

	hooks.OnSegmentStart(ctx, &domain.SegmentEvent{SegmentID: "loop_0", ChainName: "B"})
	hooks.OnTrialAccepted(ctx, &domain.TrialEvent{SegmentID: "loop_0", TrialID: "3", Index: 1})
	hooks.OnTrialFailed(ctx, &domain.TrialEvent{SegmentID: "loop_0", TrialID: "4", Err: errors.New("tool crashed")})
	hooks.OnSegmentExhausted(ctx, &domain.SegmentEvent{SegmentID: "loop_0", Accepted: 1, Target: 2, Attempts: 20})
	hooks.OnWarning(ctx, &domain.WarningEvent{Message: "No segments found"})

	out := buf.String()
	assert.Contains(t, out, "loop_0 (chain B)")
	assert.Contains(t, out, "trial 3 -> model 1")
	assert.Contains(t, out, "tool crashed")
	assert.Contains(t, out, "1/2 models after 20 attempts")
	assert.Contains(t, out, "No segments found")
	assert.Nil(t, hooks.OnTrialRejected)
}

func TestProgress_VerboseReportsRejections(t *testing.T) {
	var buf bytes.Buffer
	hooks := NewProgress(&buf, true).Hooks()
	hooks.OnTrialRejected(context.Background(), &domain.TrialEvent{SegmentID: "loop_1", TrialID: "2", RejectedBy: "rmsd_cutoff"})
	assert.Contains(t, buf.String(), "trial 2 by rmsd_cutoff")
}

func TestSummaryMarkdown(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	report := &domain.BuildReport{
		RunID:           "1abc-20240101T120000Z-1a2b3c4d",
		StructureFile:   "1abc.cif",
		OutputDirectory: "out",
		N:               2,
		MaxTries:        20,
		StartedAt:       start,
		FinishedAt:      start.Add(90 * time.Second),
		Segments: []domain.SegmentReport{
			{Identifier: "loop_0", ChainName: "B", FirstSeqID: 600, LastSeqID: 602, Attempts: 4, Accepted: 2, Status: domain.StatusQuota, ConsolidatedFile: "out/1abc_loop_0.cif"},
			{Identifier: "loop_1", ChainName: "A", FirstSeqID: 10, LastSeqID: 11, Attempts: 20, Status: domain.StatusExhausted},
		},
	}

	md := SummaryMarkdown(report)
	assert.Contains(t, md, "# Build 1abc-20240101T120000Z-1a2b3c4d")
	assert.Contains(t, md, "1m30s")
	assert.Contains(t, md, "| loop_0 | B | 600-602 | 2 | 4 | 50% | quota | `out/1abc_loop_0.cif` |")
	assert.Contains(t, md, "| loop_1 | A | 10-11 | 0 | 20 | 0% | exhausted | - |")
	assert.Contains(t, md, "**Total accepted:** 2")

	assert.Contains(t, SummaryMarkdown(&domain.BuildReport{RunID: "x"}), "No segments were built")
}

func TestPlainRenderer(t *testing.T) {
	out, err := RendererFor(nil)("# title")
	assert.NoError(t, err)
	assert.Equal(t, "# title", out)
}
