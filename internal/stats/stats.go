// Package stats turns collected call outcomes into per-scenario summaries
// with nearest-rank latency percentiles.
package stats

import (
	"math"
	"sort"
	"time"

	"rerankbench/internal/bench"
)

// maxSampleErrorLen bounds the error text carried into a summary.
const maxSampleErrorLen = 200

// Summary aggregates one benchmark scenario. Latency fields are computed
// over successful calls only; LatencyDefined is false when there were none,
// in which case the latency fields carry no meaning.
type Summary struct {
	Label       string  `json:"label"`
	Total       int     `json:"total"`
	Succeeded   int     `json:"ok"`
	Failed      int     `json:"err"`
	SuccessRate float64 `json:"success_rate"`
	Throughput  float64 `json:"rps"`

	MeanLatency time.Duration `json:"-"`
	P50Latency  time.Duration `json:"-"`
	P95Latency  time.Duration `json:"-"`
	P99Latency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`

	// JSON-friendly millisecond fields, omitted when LatencyDefined is false
	// so undefined latencies never read as zero-millisecond ones.
	MeanMs float64 `json:"avg_ms,omitempty"`
	P50Ms  float64 `json:"p50_ms,omitempty"`
	P95Ms  float64 `json:"p95_ms,omitempty"`
	P99Ms  float64 `json:"p99_ms,omitempty"`
	MaxMs  float64 `json:"max_ms,omitempty"`

	LatencyDefined bool    `json:"latency_defined"`
	WallMs         float64 `json:"wall_ms"`

	SampleError string `json:"err_sample,omitempty"`
}

// Percentile returns the nearest-rank percentile of ascending-sorted values.
// The second return is false when values is empty, in which case the
// percentile is undefined. p <= 0 selects the minimum, p >= 100 the maximum.
func Percentile(sorted []time.Duration, p float64) (time.Duration, bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	if p <= 0 {
		return sorted[0], true
	}
	if p >= 100 {
		return sorted[n-1], true
	}

	// rank = ceil(p/100 * n), computed in integer arithmetic for integral p
	// so that exact products (e.g. p=25, n=4) never drift through floats.
	var rank int
	if ip := int(p); float64(ip) == p {
		rank = (ip*n + 99) / 100
	} else {
		rank = int(math.Ceil(p / 100.0 * float64(n)))
	}
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1], true
}

// Summarize derives a Summary from one scenario's outcomes and wall-clock
// duration. Pure: identical inputs yield identical summaries.
func Summarize(label string, outcomes []bench.Outcome, wall time.Duration) Summary {
	s := Summary{
		Label:  label,
		Total:  len(outcomes),
		WallMs: float64(wall) / float64(time.Millisecond),
	}

	latencies := make([]time.Duration, 0, len(outcomes))
	var sum time.Duration
	for _, o := range outcomes {
		if o.OK {
			s.Succeeded++
			latencies = append(latencies, o.Latency)
			sum += o.Latency
			continue
		}
		s.Failed++
		if s.SampleError == "" {
			s.SampleError = truncateError(o.Err)
		}
	}

	if s.Total > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.Total)
	}
	if wall > 0 {
		s.Throughput = float64(s.Total) / wall.Seconds()
	}

	if len(latencies) == 0 {
		return s
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	s.LatencyDefined = true
	s.MeanLatency = sum / time.Duration(len(latencies))
	s.P50Latency, _ = Percentile(latencies, 50)
	s.P95Latency, _ = Percentile(latencies, 95)
	s.P99Latency, _ = Percentile(latencies, 99)
	s.MaxLatency = latencies[len(latencies)-1]

	s.MeanMs = float64(s.MeanLatency) / float64(time.Millisecond)
	s.P50Ms = float64(s.P50Latency) / float64(time.Millisecond)
	s.P95Ms = float64(s.P95Latency) / float64(time.Millisecond)
	s.P99Ms = float64(s.P99Latency) / float64(time.Millisecond)
	s.MaxMs = float64(s.MaxLatency) / float64(time.Millisecond)

	return s
}

func truncateError(msg string) string {
	if len(msg) <= maxSampleErrorLen {
		return msg
	}
	return msg[:maxSampleErrorLen]
}
