package runner

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartGateHoldsUntilQuorum(t *testing.T) {
	const streams = 4
	gate := NewStartGate(streams + 1)

	var released int32
	var wg sync.WaitGroup
	starts := make([]time.Time, streams)
	wg.Add(streams)
	for i := 0; i < streams; i++ {
		go func(i int) {
			defer wg.Done()
			starts[i] = gate.Arrive()
			atomic.AddInt32(&released, 1)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	if n := atomic.LoadInt32(&released); n != 0 {
		t.Fatalf("%d streams released before the coordinator opened the gate", n)
	}

	opened := gate.Open()
	wg.Wait()

	if opened.IsZero() {
		t.Fatal("gate published a zero start instant")
	}
	for i, s := range starts {
		if !s.Equal(opened) {
			t.Fatalf("stream %d observed start %v, coordinator published %v", i, s, opened)
		}
	}
}

func TestStartGateSinglePartySelf(t *testing.T) {
	// One stream plus the coordinator.
	gate := NewStartGate(2)
	done := make(chan time.Time, 1)
	go func() { done <- gate.Arrive() }()
	opened := gate.Open()
	if got := <-done; !got.Equal(opened) {
		t.Fatalf("stream observed %v, want %v", got, opened)
	}
}
