// Package rc implements the shared-ownership containers.
//
// Rc is the non-atomic reference-counted container: multiple handles alias
// one immutable payload, destruction runs exactly when the last handle is
// dropped. Rc must stay within one goroutine; the count update is not
// synchronized and this precondition is documented, not runtime-checked.
// Arc is the atomic variant, safe to hand to concurrent goroutines.
package rc

import (
	"grip/internal/fault"
	"grip/internal/trace"
)

// box is the shared payload cell behind all handles of one allocation.
type box[T any] struct {
	val       T
	handle    uint64
	label     string
	count     int64
	freed     bool
	finalizer func(T)
	tracer    trace.Tracer
}

// Rc is one handle to a reference-counted payload.
//
// The zero value is not usable; construct with New.
type Rc[T any] struct {
	b    *box[T]
	dead bool
}

// Option configures a shared allocation at construction time.
type Option[T any] func(*box[T])

// WithLabel attaches a human-readable label used in faults and traces.
func WithLabel[T any](label string) Option[T] {
	return func(b *box[T]) { b.label = label }
}

// WithTracer attaches a lifecycle tracer.
func WithTracer[T any](t trace.Tracer) Option[T] {
	return func(b *box[T]) { b.tracer = t }
}

// WithFinalizer registers a function run exactly once, when the count
// reaches zero.
func WithFinalizer[T any](f func(T)) Option[T] {
	return func(b *box[T]) { b.finalizer = f }
}

// New constructs the first handle to a fresh payload with count 1.
func New[T any](value T, opts ...Option[T]) *Rc[T] {
	b := &box[T]{
		val:    value,
		handle: trace.NextHandle(),
		count:  1,
		tracer: trace.Nop,
	}
	for _, opt := range opts {
		opt(b)
	}
	trace.Point(b.tracer, trace.KindAlloc, trace.PrimRc, b.handle, 1, b.label, "")
	return &Rc[T]{b: b}
}

// Clone returns a new handle aliasing the same payload and increments the
// count by one.
func (r *Rc[T]) Clone() (*Rc[T], error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	r.b.count++
	trace.Point(r.b.tracer, trace.KindClone, trace.PrimRc, r.b.handle, r.b.count, r.b.label, "")
	return &Rc[T]{b: r.b}, nil
}

// Drop invalidates this handle and decrements the count. When the count
// reaches zero the payload is destroyed and the finalizer runs.
func (r *Rc[T]) Drop() error {
	if r.dead {
		return r.traceFault(fault.DoubleDrop(r.label()))
	}
	r.dead = true
	r.b.count--
	trace.Point(r.b.tracer, trace.KindDrop, trace.PrimRc, r.b.handle, r.b.count, r.b.label, "")
	if r.b.count == 0 {
		r.b.freed = true
		if r.b.finalizer != nil {
			r.b.finalizer(r.b.val)
		}
		var zero T
		r.b.val = zero
		trace.Point(r.b.tracer, trace.KindFree, trace.PrimRc, r.b.handle, 0, r.b.label, "")
	}
	return nil
}

// Get returns the payload. The payload is immutable at this layer; callers
// wanting shared mutation nest a Cell (single-goroutine) or a Mutex inside.
func (r *Rc[T]) Get() (T, error) {
	var zero T
	if err := r.check(); err != nil {
		return zero, err
	}
	return r.b.val, nil
}

// StrongCount returns the number of live handles for the payload.
func (r *Rc[T]) StrongCount() (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	return r.b.count, nil
}

// Valid reports whether this handle is still live.
func (r *Rc[T]) Valid() bool {
	return !r.dead
}

// Label returns the allocation label.
func (r *Rc[T]) Label() string {
	return r.label()
}

func (r *Rc[T]) label() string {
	if r.b == nil {
		return ""
	}
	return r.b.label
}

func (r *Rc[T]) check() error {
	if r.dead {
		return r.traceFault(fault.UseAfterFree(r.label()))
	}
	return nil
}

func (r *Rc[T]) traceFault(f *fault.Fault) error {
	if r.b != nil {
		trace.Point(r.b.tracer, trace.KindFault, trace.PrimRc, r.b.handle, r.b.count, r.b.label, f.Code.String())
	}
	return f
}
