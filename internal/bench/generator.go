package bench

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rerankbench/internal/clientpool"
	"rerankbench/internal/metrics"
)

// Options configure a Generator run.
type Options struct {
	Concurrency    int // number of parallel workers
	CallsPerWorker int // sequential calls issued by each worker
	Warmup         int // serial untimed calls before the run (0 disables)
	Rate           int // calls per second across all workers (0 means unlimited)

	Pool         *clientpool.Pool  // handle source: pooled for warm-up, factory for workers (required)
	ClientConfig clientpool.Config // config every handle is bound to
	Operation    Operation         // unit of work (required)

	Collector *metrics.Collector // optional live collector
	WarmupLog func(error)        // optional; defaults to log.Printf

	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.CallsPerWorker <= 0 {
		o.CallsPerWorker = 1
	}
	if o.Warmup < 0 {
		o.Warmup = 0
	}
	if o.Rate < 0 {
		o.Rate = 0
	}
	if o.WarmupLog == nil {
		o.WarmupLog = func(err error) {
			log.Printf("bench: warmup call failed: %v", err)
		}
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return nil
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

// Generator fans a single operation out across workers. Each worker
// constructs one private handle through the pool's factory and reuses it for
// its sequential calls; handles are never shared between workers because the
// underlying client carries per-connection state that is unsafe or
// inefficient to drive concurrently. Only warm-up borrows the pooled shared
// handle.
type Generator struct {
	opt Options
}

func New(opt Options) *Generator {
	opt.normalize()
	return &Generator{opt: opt}
}

type workerResult struct {
	outcomes []Outcome
	err      error
}

// Run executes Concurrency workers of CallsPerWorker calls each and returns
// every outcome plus the wall-clock duration of the timed window. Wall time
// spans worker dispatch through collection of the last outcome, so it
// approximates client-observed throughput. Outcome order is arbitrary across
// workers and sequential within a worker.
//
// Per-call failures become failed outcomes. A worker that cannot construct
// its handle aborts its remaining calls and surfaces the error as the run
// error; outcomes gathered by other workers are still returned.
func (g *Generator) Run(ctx context.Context) ([]Outcome, time.Duration, error) {
	opt := g.opt
	if opt.Pool == nil {
		return nil, 0, fmt.Errorf("bench: pool is required")
	}
	if opt.Operation == nil {
		return nil, 0, fmt.Errorf("bench: operation is required")
	}

	g.warmup(ctx)

	limiter := opt.LimiterFactory(opt.Rate)
	if opt.Collector != nil {
		opt.Collector.Start()
	}

	results := make(chan workerResult, opt.Concurrency)
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < opt.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- g.worker(ctx, limiter)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, 0, opt.Concurrency*opt.CallsPerWorker)
	var runErr error
	for r := range results {
		if r.err != nil && runErr == nil {
			runErr = r.err
		}
		outcomes = append(outcomes, r.outcomes...)
	}
	wall := time.Since(start)

	return outcomes, wall, runErr
}

func (g *Generator) worker(ctx context.Context, limiter *rate.Limiter) workerResult {
	opt := g.opt

	h, err := opt.Pool.NewPrivateHandle(opt.ClientConfig)
	if err != nil {
		return workerResult{err: fmt.Errorf("worker setup: %w", err)}
	}
	defer func() {
		if err := h.Close(); err != nil {
			log.Printf("bench: release worker handle: %v", err)
		}
	}()

	outcomes := make([]Outcome, 0, opt.CallsPerWorker)
	for i := 0; i < opt.CallsPerWorker; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				// Context ended while pacing; remaining calls are skipped and
				// the partial outcomes stand.
				return workerResult{outcomes: outcomes}
			}
		}
		out := Execute(ctx, h, opt.Operation)
		outcomes = append(outcomes, out)
		if opt.Collector != nil {
			opt.Collector.Record(out.Latency, out.OK)
		}
	}
	return workerResult{outcomes: outcomes}
}

// warmup issues serial untimed calls to absorb cold-start effects. Failures
// are surfaced through WarmupLog but never abort the timed run.
func (g *Generator) warmup(ctx context.Context) {
	opt := g.opt
	if opt.Warmup <= 0 {
		return
	}

	h, err := opt.Pool.Acquire(opt.ClientConfig)
	if err != nil {
		opt.WarmupLog(fmt.Errorf("acquire warmup handle: %w", err))
		return
	}
	for i := 0; i < opt.Warmup; i++ {
		if out := Execute(ctx, h, opt.Operation); !out.OK {
			opt.WarmupLog(fmt.Errorf("%s", out.Err))
		}
	}
}
