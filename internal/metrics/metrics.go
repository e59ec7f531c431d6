// Package metrics exposes build progress as Prometheus collectors fed by lifecycle hooks.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/loopbuild/pkg/domain"
)

const namespace = "loopbuild"

// Trial outcomes used as the "outcome" label.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Collectors holds the build metrics.
type Collectors struct {
	Trials        *prometheus.CounterVec
	Segments      *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	Consolidated  prometheus.Counter
	TrialDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trials_total",
				Help:      "Total number of trials by outcome",
			},
			[]string{"outcome"},
		),
		Segments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "segments_total",
				Help:      "Total number of finished segment loops by status",
			},
			[]string{"status"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_rejections_total",
				Help:      "Total number of trials rejected, by rejecting filter",
			},
			[]string{"filter"},
		),
		Consolidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "models_consolidated_total",
			Help:      "Total number of accepted models merged into segment files",
		}),
		TrialDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_duration_seconds",
			Help:      "Duration of a trial from generation to verdict",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}

	for _, col := range []prometheus.Collector{c.Trials, c.Segments, c.Rejections, c.Consolidated, c.TrialDuration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialAccepted: func(_ context.Context, e *domain.TrialEvent) {
			c.Trials.WithLabelValues(OutcomeAccepted).Inc()
			c.TrialDuration.Observe(e.Duration.Seconds())
		},
		OnTrialRejected: func(_ context.Context, e *domain.TrialEvent) {
			c.Trials.WithLabelValues(OutcomeRejected).Inc()
			c.Rejections.WithLabelValues(e.RejectedBy).Inc()
			c.TrialDuration.Observe(e.Duration.Seconds())
		},
		OnTrialFailed: func(_ context.Context, e *domain.TrialEvent) {
			c.Trials.WithLabelValues(OutcomeFailed).Inc()
		},
		OnSegmentQuota: func(_ context.Context, e *domain.SegmentEvent) {
			c.Segments.WithLabelValues(string(domain.StatusQuota)).Inc()
		},
		OnSegmentExhausted: func(_ context.Context, e *domain.SegmentEvent) {
			c.Segments.WithLabelValues(string(domain.StatusExhausted)).Inc()
		},
		OnConsolidate: func(_ context.Context, e *domain.ConsolidateEvent) {
			c.Consolidated.Add(float64(len(e.Sources)))
		},
	}
}

// Serve exposes the gatherer on addr at /metrics until ctx is canceled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
