// Package sweep drives steady-state trials across a range of offered rates.
package sweep

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"pkt.systems/pslog"

	"github.com/torosent/blockfire/internal/config"
	"github.com/torosent/blockfire/internal/metrics"
	"github.com/torosent/blockfire/internal/output"
	"github.com/torosent/blockfire/internal/runner"
	"github.com/torosent/blockfire/internal/stats"
	"github.com/torosent/blockfire/internal/storage"
	"github.com/torosent/blockfire/internal/tracing"
	"github.com/torosent/blockfire/internal/workload"
)

// ErrNoCompletedTrials is returned when every rate point in the sweep
// finished without a single completed sample.
var ErrNoCompletedTrials = errors.New("sweep: no trial completed any samples")

// Driver runs one trial per offered-rate point and emits a record for each.
type Driver struct {
	cfg       *config.Config
	backend   storage.Backend
	writer    *output.SummaryWriter
	logger    pslog.Logger
	tracer    trace.Tracer
	collector *metrics.Collector
}

// Option customizes a Driver.
type Option func(*Driver)

// WithLogger attaches a structured logger; the default discards.
func WithLogger(logger pslog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithTracer attaches a tracer emitting one span per trial.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Driver) { d.tracer = tracer }
}

// WithCollector attaches a live metrics sink shared across trials.
func WithCollector(c *metrics.Collector) Option {
	return func(d *Driver) { d.collector = c }
}

func New(cfg *config.Config, backend storage.Backend, writer *output.SummaryWriter, opts ...Option) *Driver {
	d := &Driver{
		cfg:     cfg,
		backend: backend,
		writer:  writer,
		logger:  pslog.NoopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run sweeps the offered rate from RateMin to RateMax inclusive in RateStep
// increments. Each trial draws fresh per-stream seeds from the root source,
// so schedules never correlate across rate points. A trial that completes
// zero samples is logged and skipped; the sweep continues.
func (d *Driver) Run(ctx context.Context) error {
	runID := ulid.Make().String()

	seed := d.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	root := rand.New(rand.NewSource(seed))

	if d.cfg.Header {
		if err := d.writer.WriteHeader(runID); err != nil {
			return err
		}
	}

	d.logger.Info("sweep started",
		"run_id", runID,
		"threads", d.cfg.Threads,
		"block_count", d.cfg.BlockCount,
		"write_pct", d.cfg.WritePct,
		"rate_min", d.cfg.RateMin,
		"rate_max", d.cfg.RateMax,
		"rate_step", d.cfg.RateStep,
	)

	completedTrials := 0
	for rate := d.cfg.RateMin; rate <= d.cfg.RateMax; rate += d.cfg.RateStep {
		if err := ctx.Err(); err != nil {
			return err
		}
		sum, err := d.runTrial(ctx, runID, rate, root.Int63())
		if err != nil {
			if errors.Is(err, stats.ErrNoSamples) {
				d.logger.Error("trial completed no samples",
					"run_id", runID, "offered_rps", rate)
				continue
			}
			return err
		}
		if err := d.writer.Write(sum); err != nil {
			return err
		}
		completedTrials++
	}

	if completedTrials == 0 {
		return ErrNoCompletedTrials
	}
	return nil
}

// runTrial executes one offered-rate point and reduces its samples.
func (d *Driver) runTrial(ctx context.Context, runID string, offeredRPS float64, seed int64) (stats.Summary, error) {
	var span trace.Span
	if d.tracer != nil {
		ctx, span = startSpan(ctx, d, runID, offeredRPS)
	}

	trial := runner.NewTrial(runner.Options{
		Threads:     d.cfg.Threads,
		BlockCount:  d.cfg.BlockCount,
		Backend:     d.backend,
		NewSchedule: d.newScheduleFunc(offeredRPS),
		Tolerance:   d.cfg.Tolerance,
		MaxInflight: d.cfg.MaxInflight,
		Seed:        seed,
		Collector:   d.collector,
	})

	res, err := trial.Run(ctx)
	if err != nil {
		if span != nil {
			endSpan(span, err, res)
		}
		return stats.Summary{}, err
	}

	sum, err := stats.Reduce(res.Samples, d.cfg.Threads, offeredRPS, res.AchievedRPS, res.CPUUsage)
	if span != nil {
		endSpan(span, err, res)
	}
	if err != nil {
		return stats.Summary{}, err
	}

	d.logger.Info("trial complete",
		"offered_rps", offeredRPS,
		"achieved_rps", sum.AchievedRPS,
		"samples", sum.Samples,
		"dropped", res.Dropped,
		"failed", res.Failed,
		"mean_us", sum.MeanUS,
		"stddev_us", sum.StdDevUS,
		"p99_us", sum.P99US,
		"cpu_pct", sum.CPUUsage,
	)
	return sum, nil
}

// newScheduleFunc binds the rate point's arrival process to the configured
// model. The offered rate is split evenly across streams.
func (d *Driver) newScheduleFunc(offeredRPS float64) runner.ScheduleFunc {
	meanUS := 1e6 / (offeredRPS / float64(d.cfg.Threads))
	horizonUS := float64(d.cfg.Horizon) / float64(time.Microsecond)
	totalBlocks := d.backend.TotalBlocks()
	writePct := d.cfg.WritePct
	model := d.cfg.Arrival

	return func(arrivalSeed, drawSeed int64) []workload.WorkUnit {
		var arrival workload.ArrivalSampler
		switch model {
		case config.ArrivalModelUniform:
			arrival = workload.NewUniformArrival(meanUS)
		default:
			arrival = workload.NewExponentialArrival(arrivalSeed, meanUS)
		}
		draw := workload.NewUniformDraw(drawSeed, totalBlocks)
		return workload.Generate(arrival, draw, writePct, horizonUS)
	}
}

func startSpan(ctx context.Context, d *Driver, runID string, offeredRPS float64) (context.Context, trace.Span) {
	return tracing.StartTrialSpan(ctx, d.tracer, runID, d.cfg.Threads, offeredRPS)
}

func endSpan(span trace.Span, err error, res runner.Result) {
	tracing.EndTrialSpan(span, err,
		attribute.Int64("blockfire.generated", res.Generated),
		attribute.Int64("blockfire.dropped", res.Dropped),
		attribute.Int64("blockfire.failed", res.Failed),
		attribute.Int("blockfire.samples", len(res.Samples)),
		attribute.Float64("blockfire.achieved_rps", res.AchievedRPS),
	)
}
