package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"rerankbench/internal/bench"
	"rerankbench/internal/output"
	"rerankbench/internal/stats"
)

func sampleSummary() stats.Summary {
	outcomes := []bench.Outcome{
		{OK: true, Latency: 10 * time.Millisecond},
		{OK: true, Latency: 20 * time.Millisecond},
		{OK: false, Latency: 5 * time.Millisecond, Err: "HTTP 500: boom"},
	}
	return stats.Summarize("rerank | conc=2 | total=3", outcomes, time.Second)
}

func TestPrintSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	output.PrintSummary(&buf, sampleSummary())

	got := buf.String()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected summary + err_sample lines, got %d lines:\n%s", len(lines), got)
	}
	for _, want := range []string{
		"[rerank | conc=2 | total=3]",
		"ok=2/3",
		"succ=66.7%",
		"rps=3.00",
		"p50=10.0ms",
		"max=20.0ms",
	} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("summary line missing %q:\n%s", want, lines[0])
		}
	}
	if !strings.Contains(lines[1], "err_sample: HTTP 500: boom") {
		t.Errorf("unexpected error line %q", lines[1])
	}
}

// With zero successes, latency fields must print as n/a rather than zeros.
func TestPrintSummaryUndefinedLatency(t *testing.T) {
	s := stats.Summarize("all-fail", []bench.Outcome{{OK: false, Err: "boom"}}, time.Second)

	var buf bytes.Buffer
	output.PrintSummary(&buf, s)

	line := buf.String()
	for _, want := range []string{"avg=n/a", "p50=n/a", "p95=n/a", "p99=n/a", "max=n/a"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q:\n%s", want, line)
		}
	}
	if strings.Contains(line, "0.0ms") {
		t.Errorf("undefined latency rendered as zero:\n%s", line)
	}
}

func TestPrintSummaryNoErrorLineOnSuccess(t *testing.T) {
	s := stats.Summarize("ok", []bench.Outcome{{OK: true, Latency: time.Millisecond}}, time.Second)

	var buf bytes.Buffer
	output.PrintSummary(&buf, s)

	if strings.Contains(buf.String(), "err_sample") {
		t.Fatalf("unexpected err_sample line:\n%s", buf.String())
	}
}

// With zero successes, the JSON report must drop the latency keys entirely
// instead of emitting them as zero milliseconds.
func TestPrintJSONReportUndefinedLatency(t *testing.T) {
	s := stats.Summarize("all-fail", []bench.Outcome{{OK: false, Err: "boom"}}, time.Second)

	var buf bytes.Buffer
	if err := output.PrintJSONReport(&buf, []stats.Summary{s}); err != nil {
		t.Fatalf("print json: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"avg_ms", "p50_ms", "p95_ms", "p99_ms", "max_ms"} {
		if _, ok := decoded[0][key]; ok {
			t.Errorf("undefined latency leaked into JSON as %q:\n%s", key, buf.String())
		}
	}
	if defined, _ := decoded[0]["latency_defined"].(bool); defined {
		t.Fatalf("latency_defined should be false:\n%s", buf.String())
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := output.PrintJSONReport(&buf, []stats.Summary{sampleSummary()}); err != nil {
		t.Fatalf("print json: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(decoded))
	}
	if decoded[0]["total"].(float64) != 3 {
		t.Fatalf("unexpected total: %v", decoded[0]["total"])
	}
}
