package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/torosent/blockfire/internal/metrics"
)

// syncBuffer guards a bytes.Buffer for concurrent reporter writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressReporterEmitsUpdates(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordCompletion(25 * time.Microsecond)
	c.RecordDrop()

	buf := &syncBuffer{}
	p := NewProgressReporter(c, 5*time.Millisecond, buf)
	p.Start()
	time.Sleep(30 * time.Millisecond)
	p.Stop()

	out := buf.String()
	if !strings.Contains(out, "Completed: 1") {
		t.Fatalf("completed count missing from %q", out)
	}
	if !strings.Contains(out, "Dropped: 1") {
		t.Fatalf("dropped count missing from %q", out)
	}
}

func TestProgressReporterStopIdempotent(t *testing.T) {
	p := NewProgressReporter(metrics.NewCollector(), time.Millisecond, nil)
	p.Start()
	p.Stop()
	p.Stop() // must not panic or block
}

func TestProgressReporterStartIdempotent(t *testing.T) {
	p := NewProgressReporter(metrics.NewCollector(), time.Millisecond, nil)
	p.Start()
	p.Start()
	p.Stop()
}
