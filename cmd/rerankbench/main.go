package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rerankbench/internal/bench"
	"rerankbench/internal/clientpool"
	"rerankbench/internal/config"
	"rerankbench/internal/metrics"
	"rerankbench/internal/output"
	"rerankbench/internal/rerank"
	"rerankbench/internal/stats"
	"rerankbench/internal/threshold"
	"rerankbench/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "rerankbench: tracing shutdown: %v\n", err)
		}
	}()

	pool := clientpool.New(nil)
	defer pool.ReleaseAll()

	clientCfg := clientpool.NewConfig(cfg.BaseURL, cfg.Timeout)
	documents := rerank.SampleDocuments(cfg.Docs)

	operations := map[config.Kind]bench.Operation{
		config.KindRerank: rerank.RerankOperation(cfg.Query, documents, cfg.TopN),
		config.KindScore:  rerank.ScoreOperation(cfg.Model, cfg.Query, documents),
	}
	if tracer.Enabled() {
		for kind, op := range operations {
			operations[kind] = tracing.WrapOperation(tracer.Tracer(), string(kind), op)
		}
	}

	var summaries []stats.Summary
	var failures []threshold.Result

	for _, conc := range cfg.Concurrency {
		for _, kind := range cfg.Kinds {
			summary, err := runScenario(ctx, cfg, pool, clientCfg, config.Kind(kind), conc, operations[config.Kind(kind)], out)
			if err != nil {
				return fmt.Errorf("run %s at concurrency %d: %w", kind, conc, err)
			}
			summaries = append(summaries, summary)

			for _, result := range threshold.Evaluate(thresholds, summary) {
				if !cfg.JSONOutput {
					fmt.Fprintf(out, "  %s\n", result.Message)
				}
				if !result.Pass {
					failures = append(failures, result)
				}
			}
		}
		if !cfg.JSONOutput {
			output.PrintSeparator(out)
		}
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(out, summaries); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d threshold(s) failed", len(failures))
	}
	return nil
}

func runScenario(
	ctx context.Context,
	cfg *config.Config,
	pool *clientpool.Pool,
	clientCfg clientpool.Config,
	kind config.Kind,
	concurrency int,
	op bench.Operation,
	out io.Writer,
) (stats.Summary, error) {
	collector := metrics.NewCollector()

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		progress = output.NewProgressReporter(collector, progressInterval, out)
		progress.Start()
	}

	gen := bench.New(bench.Options{
		Concurrency:    concurrency,
		CallsPerWorker: cfg.CallsPerWorker,
		Warmup:         cfg.Warmup,
		Rate:           cfg.Rate,
		Pool:           pool,
		ClientConfig:   clientCfg,
		Operation:      op,
		Collector:      collector,
	})
	outcomes, wall, err := gen.Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(out)
	}
	if err != nil {
		return stats.Summary{}, err
	}

	// %-6s keeps the columns aligned across "rerank" and "score" lines.
	label := fmt.Sprintf("%-6s | conc=%d | total=%d", kind, concurrency, concurrency*cfg.CallsPerWorker)
	summary := stats.Summarize(label, outcomes, wall)
	if !cfg.JSONOutput {
		output.PrintSummary(out, summary)
	}
	return summary, nil
}
