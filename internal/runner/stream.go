package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/torosent/blockfire/internal/pool"
	"github.com/torosent/blockfire/internal/workload"
)

// streamResult is one worker stream's sample set plus its drop/failure
// accounting, handed to the coordinator when the stream completes.
type streamResult struct {
	units   []workload.WorkUnit
	dropped int64
	failed  int64
}

// runStream replays one schedule against the backend. It generates its
// schedule, rendezvouses at the gate, then dispatches each unit at its
// scheduled offset, dropping units observed more than the tolerance past
// their offset. It returns only after every dispatched operation has
// completed.
func (t *Trial) runStream(ctx context.Context, gate *StartGate, newSchedule func() []workload.WorkUnit, bufs *pool.BufferPool) streamResult {
	units := newSchedule()

	start := gate.Arrive()

	var (
		wg      sync.WaitGroup
		dropped int64
		failed  int64
	)
	var inflight chan struct{}
	if t.opt.MaxInflight > 0 {
		inflight = make(chan struct{}, t.opt.MaxInflight)
	}

	for i := range units {
		u := &units[i]
		target := time.Duration(u.StartUS * float64(time.Microsecond))

		if elapsed := time.Since(start); elapsed < target {
			time.Sleep(target - elapsed)
		}
		// Re-read the clock: the sleep itself has scheduling jitter that
		// must be measured, not assumed.
		if lateness := time.Since(start) - target; lateness > t.opt.Tolerance {
			dropped++
			if c := t.opt.Collector; c != nil {
				c.RecordDrop()
			}
			continue
		}

		if inflight != nil {
			inflight <- struct{}{}
		}

		wg.Add(1)
		issued := time.Now()
		go func() {
			defer wg.Done()
			buf := bufs.Get()
			defer bufs.Put(buf)

			var err error
			if u.IsWrite {
				err = t.opt.Backend.WriteBlocks(ctx, buf, u.LBA, t.opt.BlockCount)
			} else {
				err = t.opt.Backend.ReadBlocks(ctx, buf, u.LBA, t.opt.BlockCount)
			}
			if inflight != nil {
				<-inflight
			}
			if err != nil {
				atomic.AddInt64(&failed, 1)
				if c := t.opt.Collector; c != nil {
					c.RecordFailure()
				}
				return
			}
			latency := time.Since(issued)
			// Single writer: this goroutine owns the unit's latency field
			// until the stream's wait below transfers it back.
			u.DurationUS = float64(latency) / float64(time.Microsecond)
			if c := t.opt.Collector; c != nil {
				c.RecordCompletion(latency)
			}
		}()
	}

	wg.Wait()
	return streamResult{
		units:   units,
		dropped: dropped,
		failed:  atomic.LoadInt64(&failed),
	}
}
