package sysmon

import (
	"testing"
	"time"
)

func TestCPUWindowUsageInRange(t *testing.T) {
	w := StartCPUWindow()
	time.Sleep(20 * time.Millisecond)
	usage := w.Usage()
	if usage < 0 || usage > 100 {
		t.Fatalf("usage %f outside [0,100]", usage)
	}
}

func TestCPUWindowZeroValueSafe(t *testing.T) {
	var w *CPUWindow
	if got := w.Usage(); got != 0 {
		t.Fatalf("nil window usage = %f", got)
	}
	if got := (&CPUWindow{}).Usage(); got != 0 {
		t.Fatalf("unsampled window usage = %f", got)
	}
}
