package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/blockfire/internal/metrics"
)

// ProgressReporter displays a live stderr line while a trial runs.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a reporter updating at the given interval.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and terminates the line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			snap := p.collector.Snapshot(time.Since(p.start))
			fmt.Fprintf(p.writer,
				"\rCompleted: %d | Dropped: %d | Failed: %d | IOPS: %.0f | P50: %s | P99: %s",
				snap.Completed, snap.Dropped, snap.Failed,
				snap.OpsPerSec, snap.P50Latency, snap.P99Latency)
		case <-p.done:
			return
		}
	}
}
