package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rerankbench",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target service flags
	flags.String("base-url", "http://127.0.0.1:11438/v1", "Base URL of the rerank/score service")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.String("model", "qwen3-reranker", "Served model name for score requests")

	// Workload flags
	flags.String("query", "What is the capital of China?", "Query text sent with every call")
	flags.Int("docs", 16, "Number of synthetic candidate documents per call")
	flags.Int("top-n", 10, "Top-N documents requested from rerank")
	flags.StringSlice("kind", []string{"rerank", "score"}, "Operation kinds to benchmark (rerank, score)")

	// Load control flags
	flags.IntSliceP("concurrency", "c", []int{50, 100, 150}, "Concurrency levels to run, in order")
	flags.IntP("calls-per-worker", "n", 5, "Sequential calls issued by each worker")
	flags.Int("warmup", 2, "Serial warm-up calls per scenario before the timed run")
	flags.IntP("rate", "r", 0, "Calls per second limit across workers (0 means unlimited)")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted summaries")
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g. 'p95 < 250ms')")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP/HTTP endpoint for span export (empty disables tracing)")
	flags.String("trace-service", "", "Service name reported on exported spans")
	flags.Bool("trace-insecure", false, "Export spans without TLS")

	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("base-url") {
		val, err := fs.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("model") {
		val, err := fs.GetString("model")
		if err != nil {
			return err
		}
		cfg.Model = val
	}
	if fs.Changed("query") {
		val, err := fs.GetString("query")
		if err != nil {
			return err
		}
		cfg.Query = val
	}
	if fs.Changed("docs") {
		val, err := fs.GetInt("docs")
		if err != nil {
			return err
		}
		cfg.Docs = val
	}
	if fs.Changed("top-n") {
		val, err := fs.GetInt("top-n")
		if err != nil {
			return err
		}
		cfg.TopN = val
	}
	if fs.Changed("kind") {
		val, err := fs.GetStringSlice("kind")
		if err != nil {
			return err
		}
		cfg.Kinds = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetIntSlice("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("calls-per-worker") {
		val, err := fs.GetInt("calls-per-worker")
		if err != nil {
			return err
		}
		cfg.CallsPerWorker = val
	}
	if fs.Changed("warmup") {
		val, err := fs.GetInt("warmup")
		if err != nil {
			return err
		}
		cfg.Warmup = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = val
	}
	if fs.Changed("trace-service") {
		val, err := fs.GetString("trace-service")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = val
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	return nil
}
