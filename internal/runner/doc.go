// Package runner executes one open-loop trial: it fans out worker streams,
// synchronizes their start on a shared instant, replays each stream's
// schedule with lateness-based load shedding, and merges the resulting
// latency samples.
//
// # Execution model
//
// A trial is a two-level fan-out. The coordinator spawns one goroutine per
// worker stream; each stream replays its schedule in arrival order and
// spawns one further goroutine per dispatched operation, so a slow backend
// response never delays the dispatch of subsequent requests. The stream
// joins all of its operations before handing its sample set back.
//
// # Timing
//
// All streams and the coordinator rendezvous on a [StartGate] before any
// request is issued, so schedule generation cost is excluded from the
// measured window. Within a stream, a request whose dispatch would be more
// than Options.Tolerance past its scheduled offset is dropped rather than
// issued; replaying stale requests would corrupt the measured latency
// distribution.
//
// # Failure model
//
// There are no retries and no timeouts. A backend failure leaves the unit's
// latency at zero, which excludes it from reduction exactly like a drop. A
// stream that never completes blocks the trial; steady-state measurement
// requires full completion, so this is an intentional fail-stop.
package runner
