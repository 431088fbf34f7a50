package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from arguments and config files.
type Loader struct {
	// Usage is where usage errors are explained; defaults to stderr.
	Usage io.Writer
}

// ErrHelpRequested is returned when the user requests help via --help.
var ErrHelpRequested = errors.New("help requested")

// ErrUsage is returned when the positional arguments are missing or
// malformed; the usage message has already been printed.
var ErrUsage = errors.New("invalid arguments")

func NewLoader() *Loader {
	return &Loader{Usage: os.Stderr}
}

// Load parses command-line arguments and the config file into a Config.
// Flag values override config-file values, which override defaults.
func (l *Loader) Load(args []string) (*Config, error) {
	usage := l.Usage
	if usage == nil {
		usage = os.Stderr
	}

	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayUsage(cmd.OutOrStdout(), cmd)
			return nil, ErrHelpRequested
		}
		fmt.Fprintln(usage, err)
		displayUsage(usage, cmd)
		return nil, ErrUsage
	}
	flagSet := cmd.Flags()

	cfg := defaults()
	if err := parsePositionals(cfg, flagSet.Args()); err != nil {
		fmt.Fprintln(usage, err)
		displayUsage(usage, cmd)
		return nil, ErrUsage
	}

	if cfg.ConfigFile != "" {
		v := viper.New()
		v.SetConfigFile(cfg.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Backend: BackendConfig{
			Kind:        BackendMem,
			MaxTransfer: 256,
		},
		RateMin:   20000,
		RateMax:   600000,
		RateStep:  20000,
		Horizon:   5 * time.Second,
		Tolerance: 5 * time.Microsecond,
		Arrival:   ArrivalModelPoisson,
		LogLevel:  "info",
		Tracing:   TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

// parsePositionals consumes CONFIG THREADS BLOCK_COUNT WRITE_PCT. A config
// path of "-" skips file loading.
func parsePositionals(cfg *Config, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("expected 4 positional arguments, got %d", len(args))
	}
	if args[0] != "-" {
		cfg.ConfigFile = args[0]
	}

	threads, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("THREADS: %w", err)
	}
	blocks, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("BLOCK_COUNT: %w", err)
	}
	pct, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("WRITE_PCT: %w", err)
	}

	cfg.Threads = threads
	cfg.BlockCount = blocks
	cfg.WritePct = pct
	return nil
}

// applyFlagOverrides copies explicitly set flags over file/default values.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !flags.Changed(name) {
			return
		}
		err = apply()
	}

	set("rate-min", func() error { return getFloat(flags, "rate-min", &cfg.RateMin) })
	set("rate-max", func() error { return getFloat(flags, "rate-max", &cfg.RateMax) })
	set("rate-step", func() error { return getFloat(flags, "rate-step", &cfg.RateStep) })
	set("horizon", func() error { return getDuration(flags, "horizon", &cfg.Horizon) })
	set("tolerance", func() error { return getDuration(flags, "tolerance", &cfg.Tolerance) })
	set("arrival-model", func() error {
		s, e := flags.GetString("arrival-model")
		cfg.Arrival = ArrivalModel(s)
		return e
	})
	set("max-inflight", func() error { return getInt(flags, "max-inflight", &cfg.MaxInflight) })
	set("seed", func() error {
		v, e := flags.GetInt64("seed")
		cfg.Seed = v
		return e
	})

	set("backend", func() error {
		s, e := flags.GetString("backend")
		cfg.Backend.Kind = BackendKind(s)
		return e
	})
	set("disk-path", func() error { return getString(flags, "disk-path", &cfg.Backend.Path) })
	set("disk-sync", func() error { return getBool(flags, "disk-sync", &cfg.Backend.Sync) })
	set("total-blocks", func() error {
		v, e := flags.GetUint64("total-blocks")
		cfg.Backend.TotalBlocks = v
		return e
	})
	set("max-transfer", func() error { return getInt(flags, "max-transfer", &cfg.Backend.MaxTransfer) })
	set("mem-latency", func() error { return getDuration(flags, "mem-latency", &cfg.Backend.ServiceLatency) })
	set("mem-iops", func() error { return getFloat(flags, "mem-iops", &cfg.Backend.IOPSLimit) })
	set("mem-fail-every", func() error { return getInt(flags, "mem-fail-every", &cfg.Backend.FailEvery) })

	set("s3-endpoint", func() error { return getString(flags, "s3-endpoint", &cfg.Backend.S3.Endpoint) })
	set("s3-access-key", func() error { return getString(flags, "s3-access-key", &cfg.Backend.S3.AccessKey) })
	set("s3-secret-key", func() error { return getString(flags, "s3-secret-key", &cfg.Backend.S3.SecretKey) })
	set("s3-bucket", func() error { return getString(flags, "s3-bucket", &cfg.Backend.S3.Bucket) })
	set("s3-object", func() error { return getString(flags, "s3-object", &cfg.Backend.S3.Object) })
	set("s3-secure", func() error { return getBool(flags, "s3-secure", &cfg.Backend.S3.Secure) })

	set("output", func() error { return getString(flags, "output", &cfg.Output) })
	set("header", func() error { return getBool(flags, "header", &cfg.Header) })
	set("progress", func() error { return getBool(flags, "progress", &cfg.Progress) })
	set("log-level", func() error { return getString(flags, "log-level", &cfg.LogLevel) })

	set("trace-endpoint", func() error { return getString(flags, "trace-endpoint", &cfg.Tracing.Endpoint) })
	set("trace-protocol", func() error { return getString(flags, "trace-protocol", &cfg.Tracing.Protocol) })
	set("trace-sample-rate", func() error { return getFloat(flags, "trace-sample-rate", &cfg.Tracing.SampleRate) })
	set("trace-insecure", func() error { return getBool(flags, "trace-insecure", &cfg.Tracing.Insecure) })

	return err
}

func getString(flags *pflag.FlagSet, name string, dst *string) error {
	v, err := flags.GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func getInt(flags *pflag.FlagSet, name string, dst *int) error {
	v, err := flags.GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func getFloat(flags *pflag.FlagSet, name string, dst *float64) error {
	v, err := flags.GetFloat64(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func getBool(flags *pflag.FlagSet, name string, dst *bool) error {
	v, err := flags.GetBool(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func getDuration(flags *pflag.FlagSet, name string, dst *time.Duration) error {
	v, err := flags.GetDuration(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
