package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
	"github.com/jsamuelsen/quote-keeper/internal/platform/telemetry"
)

// A sync cycle runs its phases strictly in order and stops at the first
// failure:
//
//	fetch      pull one page from the remote
//	reconcile  merge server-wins, persist, re-render
//
// Nothing is written unless fetch succeeded, so a failed cycle leaves the
// local collection untouched.

// CyclePhase names a step of a sync cycle.
type CyclePhase string

const (
	PhaseFetch     CyclePhase = "fetch"
	PhaseReconcile CyclePhase = "reconcile"
)

// CycleError records which phase of which cycle failed.
type CycleError struct {
	Phase   CyclePhase
	CycleID uint64
	Cause   error
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("sync cycle %d: %s failed: %v", e.CycleID, e.Phase, e.Cause)
}

// Unwrap returns the cause for errors.Is/As support.
func (e *CycleError) Unwrap() error {
	return e.Cause
}

// runPhase runs fn as one phase of cycle id, with debug logs around it.
func runPhase[T any](ctx context.Context, id uint64, phase CyclePhase, fn func(context.Context) (T, error)) (T, error) {
	logger := logging.FromContext(ctx).With(slog.String("phase", string(phase)))
	start := time.Now()

	ctx, end := telemetry.StartSpan(ctx, "sync."+string(phase),
		attribute.Int64("sync.cycle", int64(id)))

	logger.DebugContext(ctx, "phase started")

	out, err := fn(ctx)
	end(err)

	if err != nil {
		logger.WarnContext(ctx, "phase failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))

		var zero T

		return zero, &CycleError{Phase: phase, CycleID: id, Cause: err}
	}

	logger.DebugContext(ctx, "phase completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}

// FailedPhase extracts the failing phase from a cycle error.
func FailedPhase(err error) (CyclePhase, bool) {
	var cycleErr *CycleError
	if errors.As(err, &cycleErr) {
		return cycleErr.Phase, true
	}

	return "", false
}
