package runtime

import (
	"context"

	"github.com/aretw0/loopbuild/pkg/domain"
)

func (e *Engine) emitBuildStart(ctx context.Context, ev *domain.BuildEvent) {
	if e.hooks.OnBuildStart != nil {
		e.hooks.OnBuildStart(ctx, ev)
	}
}

func (e *Engine) emitBuildFinish(ctx context.Context, ev *domain.BuildEvent) {
	if e.hooks.OnBuildFinish != nil {
		e.hooks.OnBuildFinish(ctx, ev)
	}
}

func (e *Engine) emitSegmentStart(ctx context.Context, ev *domain.SegmentEvent) {
	if e.hooks.OnSegmentStart != nil {
		e.hooks.OnSegmentStart(ctx, ev)
	}
}

func (e *Engine) emitSegmentQuota(ctx context.Context, ev *domain.SegmentEvent) {
	if e.hooks.OnSegmentQuota != nil {
		e.hooks.OnSegmentQuota(ctx, ev)
	}
}

func (e *Engine) emitSegmentExhausted(ctx context.Context, ev *domain.SegmentEvent) {
	if e.hooks.OnSegmentExhausted != nil {
		e.hooks.OnSegmentExhausted(ctx, ev)
	}
}

func (e *Engine) emitTrialStart(ctx context.Context, ev *domain.TrialEvent) {
	if e.hooks.OnTrialStart != nil {
		e.hooks.OnTrialStart(ctx, ev)
	}
}

func (e *Engine) emitTrialScored(ctx context.Context, ev *domain.TrialEvent) {
	if e.hooks.OnTrialScored != nil {
		e.hooks.OnTrialScored(ctx, ev)
	}
}

func (e *Engine) emitTrialAccepted(ctx context.Context, ev *domain.TrialEvent) {
	if e.hooks.OnTrialAccepted != nil {
		e.hooks.OnTrialAccepted(ctx, ev)
	}
}

func (e *Engine) emitTrialRejected(ctx context.Context, ev *domain.TrialEvent) {
	if e.hooks.OnTrialRejected != nil {
		e.hooks.OnTrialRejected(ctx, ev)
	}
}

func (e *Engine) emitTrialFailed(ctx context.Context, ev *domain.TrialEvent) {
	if e.hooks.OnTrialFailed != nil {
		e.hooks.OnTrialFailed(ctx, ev)
	}
}

func (e *Engine) emitConsolidate(ctx context.Context, ev *domain.ConsolidateEvent) {
	if e.hooks.OnConsolidate != nil {
		e.hooks.OnConsolidate(ctx, ev)
	}
}

func (e *Engine) emitWarning(ctx context.Context, ev *domain.WarningEvent) {
	if e.hooks.OnWarning != nil {
		e.hooks.OnWarning(ctx, ev)
	}
}
