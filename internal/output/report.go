// Package output renders scenario summaries and live progress.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"rerankbench/internal/stats"
)

// PrintSummary writes one scenario as a single human-readable line, plus an
// indented sample-error line when failures occurred. Latency fields render as
// n/a when no call succeeded.
func PrintSummary(w io.Writer, s stats.Summary) {
	fmt.Fprintf(w,
		"[%s] ok=%d/%d succ=%.1f%% rps=%.2f avg=%s p50=%s p95=%s p99=%s max=%s\n",
		s.Label,
		s.Succeeded,
		s.Total,
		s.SuccessRate*100,
		s.Throughput,
		latencyField(s, s.MeanMs),
		latencyField(s, s.P50Ms),
		latencyField(s, s.P95Ms),
		latencyField(s, s.P99Ms),
		latencyField(s, s.MaxMs),
	)
	if s.SampleError != "" {
		fmt.Fprintf(w, "  err_sample: %s\n", s.SampleError)
	}
}

// PrintSeparator writes the divider between concurrency levels.
func PrintSeparator(w io.Writer) {
	for i := 0; i < 110; i++ {
		fmt.Fprint(w, "-")
	}
	fmt.Fprintln(w)
}

// PrintJSONReport writes all summaries as indented JSON.
func PrintJSONReport(w io.Writer, summaries []stats.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

func latencyField(s stats.Summary, msValue float64) string {
	if !s.LatencyDefined {
		return "n/a"
	}
	return fmt.Sprintf("%.1fms", msValue)
}
