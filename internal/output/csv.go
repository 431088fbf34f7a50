// Package output emits sweep results and live progress.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gofrs/flock"

	"github.com/torosent/blockfire/internal/stats"
)

// Header is the column layout of every record.
const Header = "threads,offered_rate,achieved_rate,cpu_usage,samples,min,mean,p90,p99,p999,p9999,max"

// SummaryWriter emits one comma-delimited record per sweep point, latency
// fields in microseconds at fixed 4-decimal precision.
type SummaryWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	lock   *flock.Flock
}

// NewSummaryWriter writes records to w.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{w: w}
}

// OpenFileSummaryWriter appends records to path, holding an advisory file
// lock around each write so concurrent bench invocations can share one
// results file without interleaving records.
func OpenFileSummaryWriter(path string) (*SummaryWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("output: open %s: %w", path, err)
	}
	return &SummaryWriter{
		w:      f,
		closer: f,
		lock:   flock.New(path),
	}, nil
}

// WriteHeader emits a commented run banner and the column header.
func (s *SummaryWriter) WriteHeader(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()
	_, err := fmt.Fprintf(s.w, "# run %s\n# %s\n", runID, Header)
	return err
}

// Write emits one summary record.
func (s *SummaryWriter) Write(sum stats.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()
	_, err := fmt.Fprintf(s.w, "%d,%.4f,%.4f,%.4f,%d,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f\n",
		sum.Threads,
		sum.OfferedRPS,
		sum.AchievedRPS,
		sum.CPUUsage,
		sum.Samples,
		sum.MinUS,
		sum.MeanUS,
		sum.P90US,
		sum.P99US,
		sum.P999US,
		sum.P9999US,
		sum.MaxUS,
	)
	return err
}

func (s *SummaryWriter) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *SummaryWriter) acquire() error {
	if s.lock == nil {
		return nil
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("output: lock results file: %w", err)
	}
	return nil
}

func (s *SummaryWriter) release() {
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
}
