package runner

import (
	"sync"
	"time"
)

// StartGate is a one-shot rendezvous for N worker streams plus the
// coordinator. Every party blocks until the full quorum has arrived; the
// coordinator then publishes the shared experiment start instant and
// releases everyone at once.
//
// The start instant is written exactly once, before the release channel is
// closed; the close gives every stream a happens-before edge to that write,
// so elapsed-time computations never observe a stale or zero start.
type StartGate struct {
	ready   sync.WaitGroup
	release chan struct{}
	start   time.Time
}

// NewStartGate creates a gate for the given number of parties, including
// the coordinator.
func NewStartGate(parties int) *StartGate {
	g := &StartGate{release: make(chan struct{})}
	g.ready.Add(parties)
	return g
}

// Arrive marks one stream ready and blocks until the gate opens, returning
// the shared start instant.
func (g *StartGate) Arrive() time.Time {
	g.ready.Done()
	<-g.release
	return g.start
}

// Open marks the coordinator ready, waits for every stream, then stamps
// and publishes the start instant. It must be called exactly once.
func (g *StartGate) Open() time.Time {
	g.ready.Done()
	g.ready.Wait()
	g.start = time.Now()
	close(g.release)
	return g.start
}
