package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
)

// LogHooks logs every input at debug level and evaluations at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInput: func(ctx context.Context, e *domain.InputEvent) {
			logger.DebugContext(ctx, "input",
				"command", e.Input.Command,
				"current", e.State.CurrentOperand,
			)
		},
		OnCompute: func(ctx context.Context, e *domain.ComputeEvent) {
			logger.InfoContext(ctx, "compute",
				"operator", e.Operator,
				"previous", e.Previous,
				"current", e.Current,
				"result", e.Result,
			)
		},
		OnDivisionByZero: func(ctx context.Context, e *domain.ComputeEvent) {
			logger.WarnContext(ctx, "division by zero",
				"previous", e.Previous,
			)
		},
	}
}

// Combine fans each event out to every non-nil hook in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInput: func(ctx context.Context, e *domain.InputEvent) {
			for _, h := range hooks {
				if h.OnInput != nil {
					h.OnInput(ctx, e)
				}
			}
		},
		OnCompute: func(ctx context.Context, e *domain.ComputeEvent) {
			for _, h := range hooks {
				if h.OnCompute != nil {
					h.OnCompute(ctx, e)
				}
			}
		},
		OnDivisionByZero: func(ctx context.Context, e *domain.ComputeEvent) {
			for _, h := range hooks {
				if h.OnDivisionByZero != nil {
					h.OnDivisionByZero(ctx, e)
				}
			}
		},
	}
}
