package trace

import (
	"time"
)

// Tracer is the main interface for emitting lifecycle events.
type Tracer interface {
	// Emit records an event. Must be goroutine-safe; the tracer stamps
	// the sequence number and timestamp.
	Emit(ev Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Enabled returns false for the nop tracer so emit sites can skip
	// building event payloads.
	Enabled() bool
}

// Point builds and emits a single event. It is the one emit helper the
// primitives use, so stamping stays in one place.
func Point(t Tracer, kind Kind, prim Prim, handle uint64, count int64, label, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(Event{
		Time:   time.Now(),
		Kind:   kind,
		Prim:   prim,
		Handle: handle,
		Count:  count,
		Label:  label,
		Detail: detail,
	})
}
