// Package trace provides lifecycle tracing for the grip primitives.
//
// Every primitive emits an event at each state transition: allocation,
// clone, drop, destruction, borrow begin/end, lock acquire/release,
// poisoning. The demos attach a tracer to narrate what the invariants do;
// the tests attach one to assert ordering and exactly-once destruction.
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead no-op singleton for when tracing is off
//   - StreamTracer: immediate write to an io.Writer
//   - RingTracer: bounded in-memory buffer for post-run inspection
//   - MultiTracer: fan-out to several sinks
//
// # Ordering
//
// Sequence numbers are allocated from a single atomic counter, so events
// from concurrent goroutines (Arc clone/drop, Mutex contention) land in one
// total order consistent with real time.
package trace
