package workload

import "math/rand"

// NewExponentialArrival returns a sampler of exponentially distributed
// inter-arrival gaps with the given mean in microseconds. The sampler owns
// its seeded generator, so two samplers with the same seed produce the same
// gap sequence.
func NewExponentialArrival(seed int64, meanUS float64) ArrivalSampler {
	r := rand.New(rand.NewSource(seed))
	return func() float64 {
		return r.ExpFloat64() * meanUS
	}
}

// NewUniformArrival returns a sampler with a fixed gap, pacing requests at
// exactly one per gapUS microseconds.
func NewUniformArrival(gapUS float64) ArrivalSampler {
	return func() float64 {
		return gapUS
	}
}

// NewUniformDraw returns a sampler of uniform draws in [0, n).
func NewUniformDraw(seed int64, n uint64) DrawSampler {
	r := rand.New(rand.NewSource(seed))
	return func() uint64 {
		if n == 0 {
			return 0
		}
		return uint64(r.Int63n(int64(n)))
	}
}
