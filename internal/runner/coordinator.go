package runner

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/torosent/blockfire/internal/pool"
	"github.com/torosent/blockfire/internal/storage"
	"github.com/torosent/blockfire/internal/sysmon"
	"github.com/torosent/blockfire/internal/workload"
)

var (
	ErrNoBackend  = errors.New("runner: backend required")
	ErrNoSchedule = errors.New("runner: schedule function required")
)

// Trial coordinates one offered-rate experiment.
type Trial struct {
	opt Options
}

// Result is the merged outcome of one trial.
type Result struct {
	// Samples holds only completed units: non-zero measured latency.
	Samples []workload.WorkUnit

	Generated int64 // scheduled units across all streams
	Dropped   int64 // units shed for scheduling lateness
	Failed    int64 // units the backend failed

	// AchievedRPS is completed samples divided by the measured wall-clock
	// window, in requests per second.
	AchievedRPS float64
	CPUUsage    float64 // percent busy across the window
	Elapsed     time.Duration
}

func NewTrial(opt Options) *Trial {
	opt.normalize()
	return &Trial{opt: opt}
}

// Run executes the trial: spawn streams, hold the gate until all are
// initialized, release, join, and merge. There is deliberately no timeout
// on the join; see the package comment.
func (t *Trial) Run(ctx context.Context) (Result, error) {
	if t.opt.Backend == nil {
		return Result{}, ErrNoBackend
	}
	if t.opt.NewSchedule == nil {
		return Result{}, ErrNoSchedule
	}

	threads := t.opt.Threads
	gate := NewStartGate(threads + 1)
	bufs := pool.NewBufferPool(t.opt.BlockCount*storage.BlockSize, t.opt.BufferRetain)

	seeds := rand.New(rand.NewSource(t.opt.Seed))
	results := make([]streamResult, threads)

	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		arrivalSeed, drawSeed := seeds.Int63(), seeds.Int63()
		go func(i int, arrivalSeed, drawSeed int64) {
			defer wg.Done()
			results[i] = t.runStream(ctx, gate, func() []workload.WorkUnit {
				return t.opt.NewSchedule(arrivalSeed, drawSeed)
			}, bufs)
		}(i, arrivalSeed, drawSeed)
	}

	cpu := sysmon.StartCPUWindow()
	start := gate.Open()
	wg.Wait()
	elapsed := time.Since(start)

	res := Result{
		CPUUsage: cpu.Usage(),
		Elapsed:  elapsed,
	}
	for i := range results {
		res.Generated += int64(len(results[i].units))
		res.Dropped += results[i].dropped
		res.Failed += results[i].failed
		for _, u := range results[i].units {
			if u.DurationUS > 0 {
				res.Samples = append(res.Samples, u)
			}
		}
	}
	if elapsed > 0 {
		res.AchievedRPS = float64(len(res.Samples)) / elapsed.Seconds()
	}
	return res, nil
}
