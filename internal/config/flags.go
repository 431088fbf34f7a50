package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const usageLine = "usage: blockfire [flags] CONFIG THREADS BLOCK_COUNT WRITE_PCT"

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "blockfire",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Sweep shape
	flags.Float64("rate-min", 20000, "Lowest offered rate in requests per second")
	flags.Float64("rate-max", 600000, "Highest offered rate in requests per second")
	flags.Float64("rate-step", 20000, "Offered rate increment between trials")
	flags.Duration("horizon", 5*time.Second, "Scheduled length of each trial")
	flags.Duration("tolerance", 5*time.Microsecond, "Max scheduling lateness before a request is dropped")
	flags.String("arrival-model", string(ArrivalModelPoisson), "Arrival model for inter-request gaps (poisson or uniform)")
	flags.Int("max-inflight", 0, "Cap on concurrently dispatched operations per stream (0 means unbounded)")
	flags.Int64("seed", 0, "Root random seed (0 derives one from the clock)")

	// Backend
	flags.String("backend", string(BackendMem), "Storage backend: 'file', 'mem', or 's3'")
	flags.String("disk-path", "", "Device or image path for the file backend")
	flags.Bool("disk-sync", false, "Open the file backend with O_SYNC")
	flags.Uint64("total-blocks", 0, "Addressable block count (0 sizes from the device where possible)")
	flags.Int("max-transfer", 256, "Largest block count a single request may carry")
	flags.Duration("mem-latency", 0, "Simulated service latency for the mem backend")
	flags.Float64("mem-iops", 0, "IOPS ceiling for the mem backend (0 means uncapped)")
	flags.Int("mem-fail-every", 0, "Make every Nth mem-backend operation fail (0 never fails)")

	// S3 backend
	flags.String("s3-endpoint", "", "S3-compatible endpoint host:port")
	flags.String("s3-access-key", "", "S3 access key")
	flags.String("s3-secret-key", "", "S3 secret key")
	flags.String("s3-bucket", "", "Bucket holding the backing device object")
	flags.String("s3-object", "", "Backing device object key")
	flags.Bool("s3-secure", false, "Use TLS for the S3 endpoint")

	// Output
	flags.StringP("output", "o", "", "Append results to this file instead of stdout")
	flags.Bool("header", false, "Emit a commented header line before the records")
	flags.Bool("progress", false, "Show a live progress line on stderr during trials")
	flags.String("log-level", "info", "Log level: trace, debug, info, warn, or error")

	// Tracing
	flags.String("trace-endpoint", "", "OTLP trace exporter endpoint (empty disables tracing)")
	flags.String("trace-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")
}

func displayUsage(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintln(w, usageLine)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  CONFIG       YAML or JSON configuration file, or '-' for none")
	fmt.Fprintln(w, "  THREADS      worker stream count (positive integer)")
	fmt.Fprintln(w, "  BLOCK_COUNT  blocks per request (positive integer)")
	fmt.Fprintln(w, "  WRITE_PCT    write percentage (integer 0-100)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, cmd.Flags().FlagUsages())
}
