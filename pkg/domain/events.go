package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBuildStart       EventType = "build_start"
	EventBuildFinish      EventType = "build_finish"
	EventSegmentStart     EventType = "segment_start"
	EventSegmentQuota     EventType = "segment_quota"
	EventSegmentExhausted EventType = "segment_exhausted"
	EventTrialStart       EventType = "trial_start"
	EventTrialScored      EventType = "trial_scored"
	EventTrialAccepted    EventType = "trial_accepted"
	EventTrialRejected    EventType = "trial_rejected"
	EventTrialFailed      EventType = "trial_failed"
	EventConsolidate      EventType = "consolidate"
	EventWarning          EventType = "warning"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NewEventBase stamps an event of the given type with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// BuildEvent marks the start or the end of a build.
type BuildEvent struct {
	EventBase
	N                int    `json:"n"`
	MaxTries         int    `json:"max_tries"`
	Segments         int    `json:"segments"`
	WorkingDirectory string `json:"working_directory"`
	OutputDirectory  string `json:"output_directory"`
}

// SegmentEvent represents entry into or exit from a segment's trial loop.
type SegmentEvent struct {
	EventBase
	SegmentID string  `json:"segment_id"`
	ChainName string  `json:"chain_name"`
	Attempts  int     `json:"attempts"`
	Accepted  int     `json:"accepted"`
	Target    int     `json:"target"`
	MaxTries  int     `json:"max_tries"`
	Rate      float64 `json:"success_rate"`
}

// TrialEvent represents one step of a trial.
type TrialEvent struct {
	EventBase
	SegmentID     string        `json:"segment_id"`
	TrialID       string        `json:"trial_id"`
	Attempt       int           `json:"attempt"`
	Index         int           `json:"index,omitempty"`
	StructureFile string        `json:"structure_file,omitempty"`
	Scores        Scores        `json:"scores,omitempty"`
	RejectedBy    string        `json:"rejected_by,omitempty"`
	FiltersRun    int           `json:"filters_run,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	Err           error         `json:"-"`
}

// ConsolidateEvent reports the merge of a segment's accepted models into one file.
type ConsolidateEvent struct {
	EventBase
	SegmentID string   `json:"segment_id"`
	File      string   `json:"file"`
	Sources   []string `json:"sources"`
}

// WarningEvent carries a non-fatal condition (degenerate request, no segments, exhaustion).
type WarningEvent struct {
	EventBase
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// LifecycleHooks defines callbacks for build observability.
// Every callback is optional.
type LifecycleHooks struct {
	OnBuildStart       func(context.Context, *BuildEvent)
	OnBuildFinish      func(context.Context, *BuildEvent)
	OnSegmentStart     func(context.Context, *SegmentEvent)
	OnSegmentQuota     func(context.Context, *SegmentEvent)
	OnSegmentExhausted func(context.Context, *SegmentEvent)
	OnTrialStart       func(context.Context, *TrialEvent)
	OnTrialScored      func(context.Context, *TrialEvent)
	OnTrialAccepted    func(context.Context, *TrialEvent)
	OnTrialRejected    func(context.Context, *TrialEvent)
	OnTrialFailed      func(context.Context, *TrialEvent)
	OnConsolidate      func(context.Context, *ConsolidateEvent)
	OnWarning          func(context.Context, *WarningEvent)
}

// ComposeHooks returns hooks that invoke every given hook set in order.
func ComposeHooks(sets ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnBuildStart: func(ctx context.Context, e *BuildEvent) {
			for _, h := range sets {
				if h.OnBuildStart != nil {
					h.OnBuildStart(ctx, e)
				}
			}
		},
		OnBuildFinish: func(ctx context.Context, e *BuildEvent) {
			for _, h := range sets {
				if h.OnBuildFinish != nil {
					h.OnBuildFinish(ctx, e)
				}
			}
		},
		OnSegmentStart: func(ctx context.Context, e *SegmentEvent) {
			for _, h := range sets {
				if h.OnSegmentStart != nil {
					h.OnSegmentStart(ctx, e)
				}
			}
		},
		OnSegmentQuota: func(ctx context.Context, e *SegmentEvent) {
			for _, h := range sets {
				if h.OnSegmentQuota != nil {
					h.OnSegmentQuota(ctx, e)
				}
			}
		},
		OnSegmentExhausted: func(ctx context.Context, e *SegmentEvent) {
			for _, h := range sets {
				if h.OnSegmentExhausted != nil {
					h.OnSegmentExhausted(ctx, e)
				}
			}
		},
		OnTrialStart: func(ctx context.Context, e *TrialEvent) {
			for _, h := range sets {
				if h.OnTrialStart != nil {
					h.OnTrialStart(ctx, e)
				}
			}
		},
		OnTrialScored: func(ctx context.Context, e *TrialEvent) {
			for _, h := range sets {
				if h.OnTrialScored != nil {
					h.OnTrialScored(ctx, e)
				}
			}
		},
		OnTrialAccepted: func(ctx context.Context, e *TrialEvent) {
			for _, h := range sets {
				if h.OnTrialAccepted != nil {
					h.OnTrialAccepted(ctx, e)
				}
			}
		},
		OnTrialRejected: func(ctx context.Context, e *TrialEvent) {
			for _, h := range sets {
				if h.OnTrialRejected != nil {
					h.OnTrialRejected(ctx, e)
				}
			}
		},
		OnTrialFailed: func(ctx context.Context, e *TrialEvent) {
			for _, h := range sets {
				if h.OnTrialFailed != nil {
					h.OnTrialFailed(ctx, e)
				}
			}
		},
		OnConsolidate: func(ctx context.Context, e *ConsolidateEvent) {
			for _, h := range sets {
				if h.OnConsolidate != nil {
					h.OnConsolidate(ctx, e)
				}
			}
		},
		OnWarning: func(ctx context.Context, e *WarningEvent) {
			for _, h := range sets {
				if h.OnWarning != nil {
					h.OnWarning(ctx, e)
				}
			}
		},
	}
}
