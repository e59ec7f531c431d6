package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/aretw0/loopbuild/pkg/domain"
)

// Progress prints one status line per build step.
type Progress struct {
	mu      sync.Mutex
	out     *termenv.Output
	verbose bool
}

// NewProgress writes to w. Colors follow the terminal profile of w.
// In verbose mode every trial is reported, otherwise only accepted ones.
func NewProgress(w io.Writer, verbose bool) *Progress {
	return &Progress{out: termenv.NewOutput(w), verbose: verbose}
}

func (p *Progress) line(color, tag, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	label := p.out.String(fmt.Sprintf("%-9s", tag)).Foreground(p.out.Color(color)).Bold()
	fmt.Fprintf(p.out, "%s %s\n", label, fmt.Sprintf(format, args...))
}

// Hooks returns lifecycle hooks that drive the status lines.
func (p *Progress) Hooks() domain.LifecycleHooks {
	hooks := domain.LifecycleHooks{
		OnBuildStart: func(_ context.Context, e *domain.BuildEvent) {
			p.line("#60a5fa", "build", "%d segment(s), n=%d, max_tries=%d", e.Segments, e.N, e.MaxTries)
		},
		OnSegmentStart: func(_ context.Context, e *domain.SegmentEvent) {
			p.line("#60a5fa", "segment", "%s (chain %s)", e.SegmentID, e.ChainName)
		},
		OnTrialAccepted: func(_ context.Context, e *domain.TrialEvent) {
			p.line("#34d399", "accepted", "%s trial %s -> model %d", e.SegmentID, e.TrialID, e.Index)
		},
		OnTrialFailed: func(_ context.Context, e *domain.TrialEvent) {
			p.line("#f87171", "failed", "%s trial %s: %v", e.SegmentID, e.TrialID, e.Err)
		},
		OnSegmentQuota: func(_ context.Context, e *domain.SegmentEvent) {
			p.line("#34d399", "done", "%s: %d/%d models in %d attempts (%.0f%%)",
				e.SegmentID, e.Accepted, e.Target, e.Attempts, e.Rate*100)
		},
		OnSegmentExhausted: func(_ context.Context, e *domain.SegmentEvent) {
			p.line("#fbbf24", "exhausted", "%s: %d/%d models after %d attempts",
				e.SegmentID, e.Accepted, e.Target, e.Attempts)
		},
		OnConsolidate: func(_ context.Context, e *domain.ConsolidateEvent) {
			p.line("#a78bfa", "merged", "%s: %d model(s) -> %s", e.SegmentID, len(e.Sources), e.File)
		},
		OnWarning: func(_ context.Context, e *domain.WarningEvent) {
			if e.Err != nil {
				p.line("#fbbf24", "warning", "%s: %v", e.Message, e.Err)
				return
			}
			p.line("#fbbf24", "warning", "%s", e.Message)
		},
	}
	if p.verbose {
		hooks.OnTrialRejected = func(_ context.Context, e *domain.TrialEvent) {
			p.line("#9ca3af", "rejected", "%s trial %s by %s", e.SegmentID, e.TrialID, e.RejectedBy)
		}
	}
	return hooks
}
