package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/torosent/blockfire/internal/stats"
)

var sampleSummary = stats.Summary{
	Threads:     8,
	OfferedRPS:  20000,
	AchievedRPS: 19874.5,
	CPUUsage:    42.125,
	Samples:     99372,
	MinUS:       10.5,
	MeanUS:      35,
	P90US:       60,
	P99US:       88.25,
	P999US:      120,
	P9999US:     240,
	MaxUS:       1042.0625,
}

func TestSummaryWriterRecordFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewSummaryWriter(&buf)
	if err := w.Write(sampleSummary); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "8,20000.0000,19874.5000,42.1250,99372,10.5000,35.0000,60.0000,88.2500,120.0000,240.0000,1042.0625\n"
	if got := buf.String(); got != want {
		t.Fatalf("record mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestSummaryWriterHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewSummaryWriter(&buf)
	if err := w.WriteHeader("01JD00000000000000000000ZZ"); err != nil {
		t.Fatalf("header: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 header lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "# run ") {
		t.Fatalf("run banner missing: %q", lines[0])
	}
	if lines[1] != "# "+Header {
		t.Fatalf("column header mismatch: %q", lines[1])
	}
}

func TestFileSummaryWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	w, err := OpenFileSummaryWriter(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := w.Write(sampleSummary); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A second invocation appends rather than truncating.
	w2, err := OpenFileSummaryWriter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w2.Write(sampleSummary); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(raw), "\n"); got != 2 {
		t.Fatalf("expected 2 records, got %d", got)
	}
}
