package services

import (
	"context"
	"log/slog"
)

// sagaStep is one reversible unit of the payment commit protocol: an action
// against the backing store paired with the compensation that undoes it.
// The store offers no cross-table transaction, so atomicity is emulated by
// unwinding applied steps in reverse order when a later step fails.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error // nil when nothing to undo
}

// runSaga executes steps in order. On the first failure it compensates every
// previously applied step in reverse and returns the original error.
// Compensation failures are logged, never escalated: the triggering error is
// always what the caller sees, so cleanup noise cannot mask the root cause.
func runSaga(ctx context.Context, steps []sagaStep) error {
	for i, step := range steps {
		err := step.run(ctx)
		if err == nil {
			continue
		}

		slog.ErrorContext(ctx, "Saga step failed, compensating",
			"step", step.name, "error", err)

		for j := i - 1; j >= 0; j-- {
			prev := steps[j]
			if prev.compensate == nil {
				continue
			}
			if cerr := prev.compensate(ctx); cerr != nil {
				slog.ErrorContext(ctx, "Compensation failed",
					"step", prev.name, "error", cerr)
			}
		}
		return err
	}
	return nil
}
