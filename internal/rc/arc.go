package rc

import (
	"sync/atomic"

	"grip/internal/fault"
	"grip/internal/trace"
)

// abox is the shared cell behind all Arc handles of one allocation.
// The count is atomic: clone and drop from different goroutines never race,
// and exactly one goroutine observes the decrement to zero.
type abox[T any] struct {
	val       T
	handle    uint64
	label     string
	count     atomic.Int64
	finalizer func(T)
	tracer    trace.Tracer
}

// Arc is one handle to an atomically reference-counted payload.
//
// Handles may be cloned and dropped from different goroutines. A single
// handle still belongs to one goroutine at a time; hand each goroutine its
// own clone.
type Arc[T any] struct {
	b    *abox[T]
	dead bool
}

// NewAtomic constructs the first Arc handle to a fresh payload with count 1.
func NewAtomic[T any](value T, opts ...Option[T]) *Arc[T] {
	cfg := &box[T]{tracer: trace.Nop}
	for _, opt := range opts {
		opt(cfg)
	}
	b := &abox[T]{
		val:       value,
		handle:    trace.NextHandle(),
		label:     cfg.label,
		finalizer: cfg.finalizer,
		tracer:    cfg.tracer,
	}
	b.count.Store(1)
	trace.Point(b.tracer, trace.KindAlloc, trace.PrimArc, b.handle, 1, b.label, "")
	return &Arc[T]{b: b}
}

// Clone returns a new handle aliasing the same payload. The increment is a
// single indivisible operation.
func (a *Arc[T]) Clone() (*Arc[T], error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	n := a.b.count.Add(1)
	trace.Point(a.b.tracer, trace.KindClone, trace.PrimArc, a.b.handle, n, a.b.label, "")
	return &Arc[T]{b: a.b}, nil
}

// Drop invalidates this handle and decrements the count. The goroutine that
// observes the transition to zero is uniquely determined by the atomic
// decrement and alone performs destruction: no double destruction, no leak.
func (a *Arc[T]) Drop() error {
	if a.dead {
		return a.traceFault(fault.DoubleDrop(a.label()))
	}
	a.dead = true
	n := a.b.count.Add(-1)
	trace.Point(a.b.tracer, trace.KindDrop, trace.PrimArc, a.b.handle, n, a.b.label, "")
	if n == 0 {
		if a.b.finalizer != nil {
			a.b.finalizer(a.b.val)
		}
		var zero T
		a.b.val = zero
		trace.Point(a.b.tracer, trace.KindFree, trace.PrimArc, a.b.handle, 0, a.b.label, "")
	}
	return nil
}

// Get returns the payload. Immutable at this layer; nest a Mutex inside for
// cross-goroutine mutation.
func (a *Arc[T]) Get() (T, error) {
	var zero T
	if err := a.check(); err != nil {
		return zero, err
	}
	return a.b.val, nil
}

// StrongCount returns a snapshot of the live-handle count. Under concurrent
// clone/drop the snapshot may be stale the instant it is read; callers must
// not treat it as a synchronization point.
func (a *Arc[T]) StrongCount() (int64, error) {
	if err := a.check(); err != nil {
		return 0, err
	}
	return a.b.count.Load(), nil
}

// Valid reports whether this handle is still live.
func (a *Arc[T]) Valid() bool {
	return !a.dead
}

// Label returns the allocation label.
func (a *Arc[T]) Label() string {
	return a.label()
}

func (a *Arc[T]) label() string {
	if a.b == nil {
		return ""
	}
	return a.b.label
}

func (a *Arc[T]) check() error {
	if a.dead {
		return a.traceFault(fault.UseAfterFree(a.label()))
	}
	return nil
}

func (a *Arc[T]) traceFault(f *fault.Fault) error {
	if a.b != nil {
		trace.Point(a.b.tracer, trace.KindFault, trace.PrimArc, a.b.handle, a.b.count.Load(), a.b.label, f.Code.String())
	}
	return f
}
