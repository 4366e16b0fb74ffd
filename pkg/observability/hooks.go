package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Chain combines hooks; each event is delivered to every non-nil callback
// in order.
func Chain(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			for _, h := range all {
				if h.OnStep != nil {
					h.OnStep(ctx, ev)
				}
			}
		},
		OnStatus: func(ctx context.Context, ev *domain.StatusEvent) {
			for _, h := range all {
				if h.OnStatus != nil {
					h.OnStatus(ctx, ev)
				}
			}
		},
		OnSuccess: func(ctx context.Context, st domain.RunState) {
			for _, h := range all {
				if h.OnSuccess != nil {
					h.OnSuccess(ctx, st)
				}
			}
		},
		OnFault: func(ctx context.Context, f *domain.Fault) {
			for _, h := range all {
				if h.OnFault != nil {
					h.OnFault(ctx, f)
				}
			}
		},
	}
}

// LogHooks logs status changes at info and every step at debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"run_id", ev.RunID,
				"kind", ev.Kind,
				"index", ev.Index,
				"label", ev.Label,
			)
		},
		OnStatus: func(ctx context.Context, ev *domain.StatusEvent) {
			logger.InfoContext(ctx, "status",
				"run_id", ev.RunID,
				"kind", ev.Kind,
				"from", ev.From,
				"to", ev.To,
			)
		},
		OnFault: func(ctx context.Context, f *domain.Fault) {
			logger.ErrorContext(ctx, "fault", "kind", f.Kind, "step", f.Step, "err", f.Message)
		},
	}
}
