// Package config holds the blockfire configuration surface: positional
// arguments, flags, and an optional YAML/JSON config file.
package config

import (
	"fmt"
	"strings"
	"time"
)

// BackendKind selects the storage backend implementation.
type BackendKind string

const (
	BackendFile BackendKind = "file"
	BackendMem  BackendKind = "mem"
	BackendS3   BackendKind = "s3"
)

// ArrivalModel selects how inter-arrival gaps are sampled.
type ArrivalModel string

const (
	ArrivalModelPoisson ArrivalModel = "poisson"
	ArrivalModelUniform ArrivalModel = "uniform"
)

// DefaultTotalBlocks matches a 260 GiB device at 512-byte sectors, the
// geometry the harness was originally tuned against.
const DefaultTotalBlocks uint64 = 547002288

type Config struct {
	// Positional arguments.
	ConfigFile string `mapstructure:"-"`
	Threads    int    `mapstructure:"-"`
	BlockCount int    `mapstructure:"-"`
	WritePct   int    `mapstructure:"-"`

	Backend BackendConfig `mapstructure:"backend"`

	// Sweep shape: offered rate in requests per second, swept inclusive
	// of both ends in RateStep increments.
	RateMin  float64 `mapstructure:"rate_min"`
	RateMax  float64 `mapstructure:"rate_max"`
	RateStep float64 `mapstructure:"rate_step"`

	// Horizon is the scheduled length of each trial.
	Horizon time.Duration `mapstructure:"horizon"`

	// Tolerance is the maximum scheduling lateness before a request is
	// dropped instead of issued.
	Tolerance time.Duration `mapstructure:"tolerance"`

	Arrival ArrivalModel `mapstructure:"arrival"`

	// MaxInflight caps concurrently dispatched operations per stream.
	// 0 leaves the fan-out unbounded, the original stress behavior.
	MaxInflight int `mapstructure:"max_inflight"`

	// Output is the results file path; empty writes to stdout.
	Output   string `mapstructure:"output"`
	Header   bool   `mapstructure:"header"`
	Progress bool   `mapstructure:"progress"`

	// Seed fixes the root random seed; 0 derives one from the clock.
	Seed int64 `mapstructure:"seed"`

	LogLevel string        `mapstructure:"log_level"`
	Tracing  TracingConfig `mapstructure:"tracing"`
}

type BackendConfig struct {
	Kind BackendKind `mapstructure:"kind"`

	// File backend.
	Path string `mapstructure:"path"`
	Sync bool   `mapstructure:"sync"`

	// Device geometry. TotalBlocks 0 lets file/s3 backends size themselves.
	TotalBlocks uint64 `mapstructure:"total_blocks"`
	MaxTransfer int    `mapstructure:"max_transfer"`

	// Simulated (mem) backend.
	ServiceLatency time.Duration `mapstructure:"service_latency"`
	IOPSLimit      float64       `mapstructure:"iops_limit"`
	FailEvery      int           `mapstructure:"fail_every"`

	S3 S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Object    string `mapstructure:"object"`
	KeyPrefix string `mapstructure:"key_prefix"`
	Secure    bool   `mapstructure:"secure"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
}

// Enabled reports whether an exporter endpoint is configured.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != ""
}

// ValidationError aggregates every configuration problem found so the user
// can fix them in one pass.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return "invalid configuration: " + strings.Join(e.issues, "; ")
}

// Validate checks cross-field consistency. Backend-dependent limits that
// need an open device (the true max transfer size) are re-checked by the
// caller after the backend is opened.
func (c *Config) Validate() error {
	var issues []string

	if c.Threads <= 0 {
		issues = append(issues, "threads must be a positive integer")
	}
	if c.BlockCount <= 0 {
		issues = append(issues, "block count must be a positive integer")
	}
	if c.WritePct < 0 || c.WritePct > 100 {
		issues = append(issues, "write percentage must be between 0 and 100")
	}
	if c.RateMin <= 0 {
		issues = append(issues, "rate_min must be positive")
	}
	if c.RateStep <= 0 {
		issues = append(issues, "rate_step must be positive")
	}
	if c.RateMax < c.RateMin {
		issues = append(issues, "rate_max must not be below rate_min")
	}
	if c.Horizon <= 0 {
		issues = append(issues, "horizon must be positive")
	}
	if c.Tolerance < 0 {
		issues = append(issues, "tolerance must not be negative")
	}
	if c.MaxInflight < 0 {
		issues = append(issues, "max_inflight must not be negative")
	}

	switch c.Arrival {
	case ArrivalModelPoisson, ArrivalModelUniform:
	default:
		issues = append(issues, fmt.Sprintf("unknown arrival model %q", c.Arrival))
	}

	switch c.Backend.Kind {
	case BackendMem:
	case BackendFile:
		if c.Backend.Path == "" {
			issues = append(issues, "file backend requires a device path")
		}
	case BackendS3:
		s3 := c.Backend.S3
		if s3.Endpoint == "" || s3.Bucket == "" || s3.Object == "" {
			issues = append(issues, "s3 backend requires endpoint, bucket, and object")
		}
	default:
		issues = append(issues, fmt.Sprintf("unknown backend kind %q", c.Backend.Kind))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
