package workload

import "testing"

const testBlocks = 547002288

func TestGenerateOffsetsNonDecreasingWithinHorizon(t *testing.T) {
	arrival := NewExponentialArrival(1, 50)
	draw := NewUniformDraw(2, testBlocks)
	units := Generate(arrival, draw, 20, 100000)
	if len(units) == 0 {
		t.Fatal("expected a non-empty schedule")
	}
	prev := 0.0
	for i, u := range units {
		if u.StartUS < prev {
			t.Fatalf("offset decreased at %d: %f < %f", i, u.StartUS, prev)
		}
		prev = u.StartUS
	}
	if last := units[len(units)-1].StartUS; last > 100000 {
		t.Fatalf("final offset %f exceeds horizon", last)
	}
}

func TestGenerateAddressesAligned(t *testing.T) {
	units := Generate(NewExponentialArrival(3, 10), NewUniformDraw(4, testBlocks), 50, 50000)
	for i, u := range units {
		if u.LBA&0x7 != 0 {
			t.Fatalf("unit %d address %#x not 8-block aligned", i, u.LBA)
		}
		if u.LBA >= testBlocks {
			t.Fatalf("unit %d address %d beyond device", i, u.LBA)
		}
	}
}

func TestGenerateZeroWritePct(t *testing.T) {
	units := Generate(NewUniformArrival(1), NewUniformDraw(5, testBlocks), 0, 10000)
	if len(units) != 10000 {
		t.Fatalf("expected 10000 units, got %d", len(units))
	}
	for i, u := range units {
		if u.IsWrite {
			t.Fatalf("unit %d is a write under 0%% write config", i)
		}
	}
}

func TestGenerateFullWritePct(t *testing.T) {
	units := Generate(NewUniformArrival(10), NewUniformDraw(6, testBlocks), 100, 10000)
	for i, u := range units {
		if !u.IsWrite {
			t.Fatalf("unit %d is a read under 100%% write config", i)
		}
	}
}

func TestGenerateReproducibleWithSeeds(t *testing.T) {
	a := Generate(NewExponentialArrival(42, 25), NewUniformDraw(43, testBlocks), 30, 20000)
	b := Generate(NewExponentialArrival(42, 25), NewUniformDraw(43, testBlocks), 30, 20000)
	if len(a) != len(b) {
		t.Fatalf("schedule lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("unit %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateLatencySentinelZero(t *testing.T) {
	units := Generate(NewUniformArrival(100), NewUniformDraw(7, testBlocks), 10, 5000)
	for i, u := range units {
		if u.DurationUS != 0 {
			t.Fatalf("unit %d has non-zero latency before execution", i)
		}
	}
}
