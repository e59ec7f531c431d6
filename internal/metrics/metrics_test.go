package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/loopbuild/internal/metrics"
	"github.com/aretw0/loopbuild/pkg/domain"
)

func TestHooks_UpdateCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	hooks := c.Hooks()
	ctx := context.Background()

	hooks.OnTrialAccepted(ctx, &domain.TrialEvent{Duration: 2 * time.Second})
	hooks.OnTrialAccepted(ctx, &domain.TrialEvent{Duration: time.Second})
	hooks.OnTrialRejected(ctx, &domain.TrialEvent{RejectedBy: "clash_filter"})
	hooks.OnTrialFailed(ctx, &domain.TrialEvent{})
	hooks.OnSegmentQuota(ctx, &domain.SegmentEvent{})
	hooks.OnSegmentExhausted(ctx, &domain.SegmentEvent{})
	hooks.OnConsolidate(ctx, &domain.ConsolidateEvent{Sources: []string{"a.cif", "b.cif"}})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Trials.WithLabelValues(metrics.OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Trials.WithLabelValues(metrics.OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Trials.WithLabelValues(metrics.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rejections.WithLabelValues("clash_filter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Segments.WithLabelValues("quota")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Segments.WithLabelValues("exhausted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Consolidated))
	assert.Equal(t, 1, testutil.CollectAndCount(c.TrialDuration))

	count, err := testutil.GatherAndCount(reg, "loopbuild_trials_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestHooks_ComposeWithOthers(t *testing.T) {
	c, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	var seen int
	hooks := domain.ComposeHooks(c.Hooks(), domain.LifecycleHooks{
		OnTrialAccepted: func(context.Context, *domain.TrialEvent) { seen++ },
	})
	hooks.OnTrialAccepted(context.Background(), &domain.TrialEvent{})
	hooks.OnBuildStart(context.Background(), &domain.BuildEvent{})

	assert.Equal(t, 1, seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Trials.WithLabelValues(metrics.OutcomeAccepted)))
}
