// Package bench drives a configurable number of parallel workers against a
// single operation and collects per-call outcomes.
package bench

import (
	"context"
	"fmt"
	"time"

	"rerankbench/internal/clientpool"
)

// Operation is one caller-supplied request/response cycle against a borrowed
// client handle. It returns nil on success; any error (transport, timeout,
// validation) marks the call failed.
type Operation func(ctx context.Context, h *clientpool.Handle) error

// Outcome records one attempted call. Immutable after creation.
type Outcome struct {
	OK      bool
	Latency time.Duration
	Err     string
}

// Execute performs one timed call. Latency is measured with the monotonic
// clock and recorded even on failure. No failure, including a panic inside
// the operation, escapes past this boundary.
func Execute(ctx context.Context, h *clientpool.Handle, op Operation) Outcome {
	start := time.Now()
	err := invoke(ctx, h, op)
	latency := time.Since(start)

	if err != nil {
		return Outcome{OK: false, Latency: latency, Err: err.Error()}
	}
	return Outcome{OK: true, Latency: latency}
}

func invoke(ctx context.Context, h *clientpool.Handle, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panic: %v", r)
		}
	}()
	return op(ctx, h)
}
