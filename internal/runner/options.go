package runner

import (
	"time"

	"github.com/torosent/blockfire/internal/metrics"
	"github.com/torosent/blockfire/internal/storage"
	"github.com/torosent/blockfire/internal/workload"
)

// DefaultTolerance is the maximum scheduling lateness before a request is
// dropped instead of issued.
const DefaultTolerance = 5 * time.Microsecond

// ScheduleFunc builds one stream's schedule from its two private seeds:
// one for the arrival process, one for the address/operation draws.
type ScheduleFunc func(arrivalSeed, drawSeed int64) []workload.WorkUnit

// Options configure one trial.
type Options struct {
	Threads     int             // worker stream count
	BlockCount  int             // blocks per request
	Backend     storage.Backend // device under test (required)
	NewSchedule ScheduleFunc    // per-stream schedule generation (required)

	// Tolerance is the lateness drop threshold. Zero is honored literally:
	// any dispatch observed late at all is dropped.
	Tolerance time.Duration

	MaxInflight int                // per-stream cap on concurrent operations; 0 = unbounded
	Seed        int64              // source for per-stream seeds
	Collector   *metrics.Collector // optional live metrics sink

	// BufferRetain bounds how many request buffers each trial keeps pooled
	// between dispatches.
	BufferRetain int
}

func (o *Options) normalize() {
	if o.Threads <= 0 {
		o.Threads = 1
	}
	if o.BlockCount <= 0 {
		o.BlockCount = 1
	}
	if o.Tolerance < 0 {
		o.Tolerance = 0
	}
	if o.MaxInflight < 0 {
		o.MaxInflight = 0
	}
	if o.BufferRetain <= 0 {
		o.BufferRetain = 64 * o.Threads
	}
}
