// Package threshold evaluates pass/fail performance assertions against
// scenario summaries.
package threshold

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"rerankbench/internal/stats"
)

// Threshold is a single assertion over one summary metric.
type Threshold struct {
	Metric   string  // p50, p95, p99, avg, max, rps, success_rate
	Operator string  // <, <=, >, >=, ==
	Value    float64 // latency metrics compare in milliseconds
	Raw      string  // original string for display
}

// Result is the outcome of evaluating one threshold against one summary.
type Result struct {
	Threshold Threshold
	Label     string
	Actual    float64
	Pass      bool
	Message   string
}

var thresholdPattern = regexp.MustCompile(`^([a-z0-9_]+)\s*([<>=!]+)\s*([0-9.]+)\s*(ms)?$`)

// Parse parses a threshold string. Supported formats:
//   - "p95 < 250"      (p95 latency in ms; "ms" suffix optional)
//   - "avg <= 100ms"   (mean latency)
//   - "rps > 50"       (scenario throughput)
//   - "success_rate >= 0.99"
func Parse(s string) (Threshold, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(strings.ToLower(raw))
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected 'metric operator value', e.g. 'p95 < 250ms')", s)
	}

	metric := matches[1]
	operator := matches[2]
	value, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", matches[3], err)
	}

	if !isValidMetric(metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: p50, p95, p99, avg, max, rps, success_rate)", metric)
	}
	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Metric:   metric,
		Operator: operator,
		Value:    value,
		Raw:      raw,
	}, nil
}

// ParseMultiple parses all threshold strings, reporting every parse failure.
func ParseMultiple(specs []string) ([]Threshold, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(specs))
	var errs []string
	for i, s := range specs {
		t, err := Parse(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errs, "; "))
	}
	return result, nil
}

// Evaluate checks all thresholds against one scenario summary.
func Evaluate(thresholds []Threshold, s stats.Summary) []Result {
	if len(thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(thresholds))
	for _, t := range thresholds {
		results = append(results, evaluateOne(t, s))
	}
	return results
}

func evaluateOne(t Threshold, s stats.Summary) Result {
	actual, err := metricValue(t.Metric, s)
	if err != nil {
		return Result{
			Threshold: t,
			Label:     s.Label,
			Pass:      false,
			Message:   fmt.Sprintf("✗ [%s] %s: %v", s.Label, t.Raw, err),
		}
	}

	pass := compare(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}
	return Result{
		Threshold: t,
		Label:     s.Label,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s [%s] %s: %.2f %s %.2f", status, s.Label, t.Raw, actual, t.Operator, t.Value),
	}
}

func metricValue(metric string, s stats.Summary) (float64, error) {
	switch metric {
	case "rps":
		return s.Throughput, nil
	case "success_rate":
		return s.SuccessRate, nil
	}

	// The rest are latency aggregates, undefined without successful calls.
	if !s.LatencyDefined {
		return 0, fmt.Errorf("latency undefined (no successful calls)")
	}
	switch metric {
	case "p50":
		return s.P50Ms, nil
	case "p95":
		return s.P95Ms, nil
	case "p99":
		return s.P99Ms, nil
	case "avg", "mean":
		return s.MeanMs, nil
	case "max":
		return s.MaxMs, nil
	}
	return 0, fmt.Errorf("unknown metric %q", metric)
}

func compare(actual float64, operator string, value float64) bool {
	switch operator {
	case "<":
		return actual < value
	case "<=":
		return actual <= value
	case ">":
		return actual > value
	case ">=":
		return actual >= value
	case "==":
		return actual == value
	default:
		return false
	}
}

func isValidMetric(metric string) bool {
	switch metric {
	case "p50", "p95", "p99", "avg", "mean", "max", "rps", "success_rate":
		return true
	}
	return false
}

func isValidOperator(operator string) bool {
	switch operator {
	case "<", "<=", ">", ">=", "==":
		return true
	}
	return false
}
