// Package workload generates open-loop block I/O schedules.
//
// A schedule is a sequence of WorkUnits with non-decreasing start offsets,
// produced from an arrival-gap sampler and an independent draw sampler.
// Generation is a pure function of its samplers and horizon, so schedules
// are reproducible given seeded samplers.
package workload

// lbaAlignMask clears the low 3 bits so every address is 8-block aligned.
const lbaAlignMask = ^uint64(0x7)

// WorkUnit is one scheduled request against the storage backend.
type WorkUnit struct {
	// StartUS is the scheduled dispatch offset in microseconds since the
	// experiment start instant.
	StartUS float64

	// LBA is the block-aligned logical block address to read or write.
	LBA uint64

	IsWrite bool

	// DurationUS is the measured completion latency in microseconds.
	// It stays 0 if the unit was dropped or the backend reported failure,
	// which is the sentinel used to exclude it from reduction.
	DurationUS float64
}

// ArrivalSampler draws successive inter-arrival gaps in microseconds.
type ArrivalSampler func() float64

// DrawSampler draws uniform values over the backend's addressable block
// range. It feeds both the operation-type choice and the address choice.
type DrawSampler func() uint64

// Generate produces a schedule whose final offset does not exceed horizonUS.
// A unit is a write when a modulo-100 draw falls below writePct; its address
// is the next draw with the low alignment bits cleared.
func Generate(arrival ArrivalSampler, draw DrawSampler, writePct int, horizonUS float64) []WorkUnit {
	var units []WorkUnit
	curUS := 0.0
	for {
		gap := arrival()
		if gap < 0 {
			gap = 0
		}
		if curUS+gap > horizonUS {
			return units
		}
		curUS += gap
		isWrite := draw()%100 < uint64(writePct)
		units = append(units, WorkUnit{
			StartUS: curUS,
			LBA:     draw() & lbaAlignMask,
			IsWrite: isWrite,
		})
	}
}
