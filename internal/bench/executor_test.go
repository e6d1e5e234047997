package bench_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rerankbench/internal/bench"
	"rerankbench/internal/clientpool"
)

func TestExecuteSuccess(t *testing.T) {
	op := func(ctx context.Context, h *clientpool.Handle) error {
		time.Sleep(2 * time.Millisecond)
		return nil
	}

	out := bench.Execute(context.Background(), &clientpool.Handle{}, op)
	if !out.OK {
		t.Fatalf("expected success, got error %q", out.Err)
	}
	if out.Err != "" {
		t.Fatalf("expected empty error on success, got %q", out.Err)
	}
	if out.Latency < 2*time.Millisecond {
		t.Fatalf("latency %s shorter than the operation", out.Latency)
	}
}

// Latency must be measured even when the operation fails.
func TestExecuteFailureMeasuresLatency(t *testing.T) {
	op := func(ctx context.Context, h *clientpool.Handle) error {
		time.Sleep(2 * time.Millisecond)
		return errors.New("boom")
	}

	out := bench.Execute(context.Background(), &clientpool.Handle{}, op)
	if out.OK {
		t.Fatal("expected failure")
	}
	if out.Err != "boom" {
		t.Fatalf("unexpected error text %q", out.Err)
	}
	if out.Latency < 2*time.Millisecond {
		t.Fatalf("latency %s not measured on failure", out.Latency)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	op := func(ctx context.Context, h *clientpool.Handle) error {
		panic("unexpected state")
	}

	out := bench.Execute(context.Background(), &clientpool.Handle{}, op)
	if out.OK {
		t.Fatal("expected failure from panicking operation")
	}
	if !strings.Contains(out.Err, "unexpected state") {
		t.Fatalf("expected panic text in error, got %q", out.Err)
	}
}
