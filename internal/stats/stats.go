// Package stats reduces completed latency samples into a summary record.
package stats

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/torosent/blockfire/internal/workload"
)

// ErrNoSamples is returned when a trial completed no requests; rank-based
// percentiles are undefined on an empty sample set.
var ErrNoSamples = errors.New("stats: no completed samples")

// Summary is one sweep point's record. Latency fields are microseconds.
type Summary struct {
	Threads     int
	OfferedRPS  float64
	AchievedRPS float64
	CPUUsage    float64
	Samples     int

	MinUS   float64
	MeanUS  float64
	P90US   float64
	P99US   float64
	P999US  float64
	P9999US float64
	MaxUS   float64

	// StdDevUS is carried for diagnostics logging; it is not part of the
	// emitted record.
	StdDevUS float64
}

// Reduce computes order statistics over the completed units. Units with a
// zero latency (dropped or failed) are excluded before ranking.
func Reduce(units []workload.WorkUnit, threads int, offeredRPS, achievedRPS, cpuUsage float64) (Summary, error) {
	latencies := make([]float64, 0, len(units))
	for _, u := range units {
		if u.DurationUS > 0 {
			latencies = append(latencies, u.DurationUS)
		}
	}
	if len(latencies) == 0 {
		return Summary{}, ErrNoSamples
	}
	sort.Float64s(latencies)

	mean, stddev := stat.MeanStdDev(latencies, nil)
	n := len(latencies)
	if n < 2 {
		stddev = 0
	}
	return Summary{
		Threads:     threads,
		OfferedRPS:  offeredRPS,
		AchievedRPS: achievedRPS,
		CPUUsage:    cpuUsage,
		Samples:     n,
		MinUS:       latencies[0],
		MeanUS:      mean,
		P90US:       rankValue(latencies, 0.90),
		P99US:       rankValue(latencies, 0.99),
		P999US:      rankValue(latencies, 0.999),
		P9999US:     rankValue(latencies, 0.9999),
		MaxUS:       latencies[n-1],
		StdDevUS:    stddev,
	}, nil
}

// rankValue selects the order statistic at rank floor(n*p). This is exact
// rank selection, not interpolation, so records are comparable across runs.
func rankValue(sorted []float64, p float64) float64 {
	i := int(float64(len(sorted)) * p)
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}
