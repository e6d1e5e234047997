// Package metrics provides a thread-safe live collector for in-flight
// benchmark runs. It backs the progress line with approximate quantiles from
// an HDR histogram; final per-scenario summaries are computed exactly by the
// stats package from the raw outcomes.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records per-call results as workers complete them.
type Collector struct {
	mu        sync.Mutex
	hist      *hdrhistogram.Histogram
	successes int64
	failures  int64
	start     time.Time
}

// Snapshot is a point-in-time view of a running scenario.
type Snapshot struct {
	Total       int64
	Successes   int64
	Failures    int64
	Elapsed     time.Duration
	CallsPerSec float64
	P99Latency  time.Duration
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:  h,
		start: time.Now(),
	}
}

// Start resets the collector's clock to now. Call it right before the timed
// window begins so snapshot rates exclude setup and warm-up time.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Record registers one completed call. Only successful latencies enter the
// histogram, matching the final summary's percentile basis.
func (c *Collector) Record(latency time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		c.failures++
		return
	}
	c.successes++

	us := latency.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)
}

// Snapshot returns current totals and an approximate p99.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Total:     c.successes + c.failures,
		Successes: c.successes,
		Failures:  c.failures,
		Elapsed:   time.Since(c.start),
	}
	if snap.Elapsed > 0 && snap.Total > 0 {
		snap.CallsPerSec = float64(snap.Total) / snap.Elapsed.Seconds()
	}
	if c.hist.TotalCount() > 0 {
		snap.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	return snap
}
