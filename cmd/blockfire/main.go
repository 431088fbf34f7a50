// Command blockfire is an open-loop load generator for block-storage
// backends. It replays randomized read/write schedules at a sweep of
// offered rates and reports latency order statistics per rate point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pkt.systems/pslog"

	"github.com/torosent/blockfire/internal/config"
	"github.com/torosent/blockfire/internal/metrics"
	"github.com/torosent/blockfire/internal/output"
	"github.com/torosent/blockfire/internal/storage"
	"github.com/torosent/blockfire/internal/sweep"
	"github.com/torosent/blockfire/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return
		}
		if !errors.Is(err, config.ErrUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := pslog.LoggerFromEnv(
		pslog.WithEnvPrefix("BLOCKFIRE_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(os.Stderr),
	)
	if level, ok := pslog.ParseLevel(cfg.LogLevel); ok {
		logger = logger.LogLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	backend, err := storage.Open(ctx, cfg.Backend)
	if err != nil {
		return err
	}
	defer backend.Close()

	// The true transfer ceiling is only known once the device is open.
	if cfg.BlockCount > backend.MaxTransfer() {
		return fmt.Errorf("block count %d exceeds backend maximum transfer of %d blocks",
			cfg.BlockCount, backend.MaxTransfer())
	}

	writer, err := openWriter(cfg)
	if err != nil {
		return err
	}
	defer writer.Close()

	opts := []sweep.Option{sweep.WithLogger(logger)}
	if cfg.Tracing.Enabled() {
		opts = append(opts, sweep.WithTracer(provider.Tracer()))
	}

	var reporter *output.ProgressReporter
	if cfg.Progress {
		collector := metrics.NewCollector()
		opts = append(opts, sweep.WithCollector(collector))
		reporter = output.NewProgressReporter(collector, progressInterval, os.Stderr)
		reporter.Start()
		defer reporter.Stop()
	}

	return sweep.New(cfg, backend, writer, opts...).Run(ctx)
}

func openWriter(cfg *config.Config) (*output.SummaryWriter, error) {
	if cfg.Output == "" {
		return output.NewSummaryWriter(os.Stdout), nil
	}
	return output.OpenFileSummaryWriter(cfg.Output)
}
