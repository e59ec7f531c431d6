package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractReport(runID string) *domain.BuildReport {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.BuildReport{
		RunID:           runID,
		StructureFile:   "/data/1abc.cif",
		OutputDirectory: "/data/out",
		N:               2,
		MaxTries:        5,
		StartedAt:       started,
		FinishedAt:      started.Add(90 * time.Second),
		Segments: []domain.SegmentReport{
			{
				Identifier: "loop_0",
				ChainName:  "B",
				FirstSeqID: 600,
				LastSeqID:  610,
				Attempts:   3,
				Accepted:   2,
				Status:     domain.StatusQuota,
				Models: []domain.ModelSummary{
					{Index: 1, TrialID: "0", Scores: domain.Scores{"atom_count": 44, "label": "ok"}},
					{Index: 2, TrialID: "2", Scores: domain.Scores{"atom_count": 44}},
				},
			},
		},
	}
}

// RunReportStoreContract runs a suite of tests to verify that a ReportStore
// implementation adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		report := contractReport(runID)

		err := store.Save(ctx, runID, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.RunID, loaded.RunID)
		assert.Equal(t, report.StructureFile, loaded.StructureFile)
		assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
		require.Len(t, loaded.Segments, 1)

		seg := loaded.Segments[0]
		assert.Equal(t, domain.StatusQuota, seg.Status)
		assert.Equal(t, 3, seg.Attempts)
		require.Len(t, seg.Models, 2)
		assert.Equal(t, "ok", seg.Models[0].Scores["label"])
		// Serializing stores turn numbers into float64; only check presence.
		assert.NotNil(t, seg.Models[0].Scores["atom_count"])
	})

	t.Run("Save Replaces", func(t *testing.T) {
		report := contractReport(runID)
		report.N = 7
		require.NoError(t, store.Save(ctx, runID, report))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.N)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, runID, contractReport(runID)))

		err := store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, contractReport(id1))
		_ = store.Save(ctx, id2, contractReport(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
