// Package metrics records live per-operation outcomes during a trial.
//
// The collector backs the optional progress line; the final summary record
// is produced separately by exact order statistics over the full sample
// set, so histogram resolution here only affects live display.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records operation outcomes in a thread-safe manner.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	completed  int64
	dropped    int64
	failed     int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
}

// Snapshot is a point-in-time view of collector state.
type Snapshot struct {
	Completed int64
	Dropped   int64
	Failed    int64

	MinLatency  time.Duration
	MaxLatency  time.Duration
	MeanLatency time.Duration
	P50Latency  time.Duration
	P99Latency  time.Duration

	OpsPerSec float64
	Elapsed   time.Duration
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &Collector{
		hist: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// RecordCompletion records one successful operation's latency.
func (c *Collector) RecordCompletion(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	us := latency.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)

	c.completed++
	c.sumLatency += latency
	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
}

// RecordDrop records an operation skipped for scheduling lateness.
func (c *Collector) RecordDrop() {
	c.mu.Lock()
	c.dropped++
	c.mu.Unlock()
}

// RecordFailure records an operation the backend failed.
func (c *Collector) RecordFailure() {
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()
}

// Snapshot computes current aggregates over the given elapsed window.
func (c *Collector) Snapshot(elapsed time.Duration) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Completed:  c.completed,
		Dropped:    c.dropped,
		Failed:     c.failed,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
		Elapsed:    elapsed,
	}
	if c.completed > 0 {
		snap.MeanLatency = time.Duration(int64(c.sumLatency) / c.completed)
	}
	if c.hist.TotalCount() > 0 {
		snap.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		snap.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	if elapsed > 0 && c.completed > 0 {
		snap.OpsPerSec = float64(c.completed) / elapsed.Seconds()
	}
	return snap
}
