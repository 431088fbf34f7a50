// Package sysmon samples host CPU usage across a measurement window.
package sysmon

import "github.com/shirou/gopsutil/v4/cpu"

// CPUWindow measures aggregate CPU busy time between two instants.
// A window that failed to sample reports 0 rather than an error: the
// cpu_usage column is advisory and must not abort a trial.
type CPUWindow struct {
	begin cpu.TimesStat
	ok    bool
}

// StartCPUWindow captures the opening CPU times snapshot.
func StartCPUWindow() *CPUWindow {
	ts, err := cpu.Times(false)
	if err != nil || len(ts) == 0 {
		return &CPUWindow{}
	}
	return &CPUWindow{begin: ts[0], ok: true}
}

// Usage closes the window and reports percent of CPU time spent busy
// since StartCPUWindow, across all cores.
func (w *CPUWindow) Usage() float64 {
	if w == nil || !w.ok {
		return 0
	}
	ts, err := cpu.Times(false)
	if err != nil || len(ts) == 0 {
		return 0
	}
	end := ts[0]
	total := totalTime(end) - totalTime(w.begin)
	idle := (end.Idle + end.Iowait) - (w.begin.Idle + w.begin.Iowait)
	if total <= 0 {
		return 0
	}
	busy := total - idle
	if busy < 0 {
		busy = 0
	}
	return busy / total * 100
}

func totalTime(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq +
		t.Softirq + t.Steal + t.Guest + t.GuestNice
}
