package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// testService serves minimal valid rerank and score responses.
func testService(t *testing.T, docs int) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		switch r.URL.Path {
		case "/v1/rerank":
			fmt.Fprint(w, `{"results": [{"index": 0, "relevance_score": 0.9}]}`)
		case "/v1/score":
			var items []string
			for i := 0; i < docs; i++ {
				items = append(items, fmt.Sprintf(`{"index": %d, "score": 0.5}`, i))
			}
			fmt.Fprintf(w, `{"data": [%s]}`, strings.Join(items, ","))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRunEndToEnd(t *testing.T) {
	srv, calls := testService(t, 4)

	var buf bytes.Buffer
	err := run([]string{
		"--base-url", srv.URL + "/v1",
		"--docs", "4",
		"--top-n", "2",
		"-c", "2,3",
		"-n", "2",
		"--warmup", "1",
	}, &buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"[rerank | conc=2 | total=4]",
		"[score  | conc=2 | total=4]",
		"[rerank | conc=3 | total=6]",
		"[score  | conc=3 | total=6]",
		"succ=100.0%",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	// 2 levels × 2 kinds × 1 warmup call each, plus (2+3)×2 timed calls per kind.
	if *calls != 24 {
		t.Errorf("expected 24 service calls, got %d", *calls)
	}
}

func TestRunJSONOutput(t *testing.T) {
	srv, _ := testService(t, 4)

	var buf bytes.Buffer
	err := run([]string{
		"--base-url", srv.URL + "/v1",
		"--docs", "4",
		"--top-n", "2",
		"-c", "2",
		"-n", "1",
		"--warmup", "0",
		"--kind", "rerank",
		"--json-output",
	}, &buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var summaries []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &summaries); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0]["total"].(float64) != 2 {
		t.Errorf("unexpected total: %v", summaries[0]["total"])
	}
}

func TestRunAllCallsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	err := run([]string{
		"--base-url", srv.URL + "/v1",
		"-c", "10",
		"-n", "1",
		"--warmup", "0",
		"--kind", "rerank",
	}, &buf)
	// A summary still prints; failed calls alone are not a run error.
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "ok=0/10") {
		t.Errorf("expected ok=0/10 in output:\n%s", got)
	}
	if !strings.Contains(got, "succ=0.0%") {
		t.Errorf("expected zero success rate in output:\n%s", got)
	}
	if !strings.Contains(got, "avg=n/a") {
		t.Errorf("expected undefined latency in output:\n%s", got)
	}
	if !strings.Contains(got, "err_sample:") || !strings.Contains(got, "boom") {
		t.Errorf("expected sample error with boom in output:\n%s", got)
	}
}

func TestRunThresholdFailure(t *testing.T) {
	srv, _ := testService(t, 4)

	var buf bytes.Buffer
	err := run([]string{
		"--base-url", srv.URL + "/v1",
		"--docs", "4",
		"--top-n", "2",
		"-c", "2",
		"-n", "1",
		"--warmup", "0",
		"--kind", "rerank",
		"--threshold", "rps > 1000000",
	}, &buf)
	if err == nil || !strings.Contains(err.Error(), "threshold") {
		t.Fatalf("expected threshold failure error, got %v", err)
	}
	if !strings.Contains(buf.String(), "✗") {
		t.Errorf("expected failing threshold marker in output:\n%s", buf.String())
	}
}

func TestRunInvalidConfig(t *testing.T) {
	var buf bytes.Buffer
	err := run([]string{"--base-url", "ftp://nope"}, &buf)
	if err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunHelp(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"--help"}, &buf); err != nil {
		t.Fatalf("help should not error: %v", err)
	}
}
