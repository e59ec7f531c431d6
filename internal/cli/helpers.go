package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/loopbuild/internal/logging"
	"github.com/aretw0/loopbuild/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
func createLogger(level slog.Level, debug, quiet, asJSON bool) *slog.Logger {
	return logging.NewWriter(os.Stderr, logLevel(level, debug, quiet), asJSON)
}

// logLevel resolves the effective level. Debug wins over quiet, quiet keeps
// only errors.
func logLevel(level slog.Level, debug, quiet bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case quiet && level < slog.LevelError:
		return slog.LevelError
	default:
		return level
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialStart: func(ctx context.Context, e *domain.TrialEvent) {
			logger.Debug("Trial Start", "segment", e.SegmentID, "trial", e.TrialID, "attempt", e.Attempt)
		},
		OnTrialScored: func(ctx context.Context, e *domain.TrialEvent) {
			logger.Debug("Trial Scored", "segment", e.SegmentID, "trial", e.TrialID, "file", e.StructureFile, "scores", e.Scores)
		},
		OnTrialRejected: func(ctx context.Context, e *domain.TrialEvent) {
			if e.Err != nil {
				logger.Debug("Trial Rejected (Error)", "segment", e.SegmentID, "trial", e.TrialID, "filter", e.RejectedBy, "err", e.Err)
			} else {
				logger.Debug("Trial Rejected", "segment", e.SegmentID, "trial", e.TrialID, "filter", e.RejectedBy, "filters_run", e.FiltersRun)
			}
		},
		OnConsolidate: func(ctx context.Context, e *domain.ConsolidateEvent) {
			logger.Debug("Consolidate", "segment", e.SegmentID, "file", e.File, "sources", e.Sources)
		},
	}
}
