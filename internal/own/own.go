// Package own implements the exclusive-ownership container.
//
// An Owner is the sole holder of its payload. Transferring the payload out
// (Take, Move) invalidates the source handle: every later operation on it
// fails with a use-after-move fault. Go has no compile-time move checking,
// so the single-owner rule is enforced at runtime through the handle flags.
package own

import (
	"grip/internal/fault"
	"grip/internal/trace"
)

// Owner holds a payload with exactly one live handle at a time.
//
// An Owner is not goroutine-safe; exclusive ownership means exclusive
// access from one goroutine.
type Owner[T any] struct {
	val       T
	label     string
	handle    uint64
	moved     bool
	dropped   bool
	finalizer func(T)
	tracer    trace.Tracer
}

// Option configures an Owner at construction time.
type Option[T any] func(*Owner[T])

// WithLabel attaches a human-readable label used in faults and traces.
func WithLabel[T any](label string) Option[T] {
	return func(o *Owner[T]) { o.label = label }
}

// WithTracer attaches a lifecycle tracer.
func WithTracer[T any](t trace.Tracer) Option[T] {
	return func(o *Owner[T]) { o.tracer = t }
}

// WithFinalizer registers a function run exactly once when the payload is
// destroyed via Drop. A moved-out payload is not destroyed by the source
// handle; the destination owns it now.
func WithFinalizer[T any](f func(T)) Option[T] {
	return func(o *Owner[T]) { o.finalizer = f }
}

// New constructs an Owner holding value.
func New[T any](value T, opts ...Option[T]) *Owner[T] {
	o := &Owner[T]{
		val:    value,
		handle: trace.NextHandle(),
		tracer: trace.Nop,
	}
	for _, opt := range opts {
		opt(o)
	}
	trace.Point(o.tracer, trace.KindAlloc, trace.PrimOwner, o.handle, 1, o.label, "")
	return o
}

// Value returns the payload through a valid handle.
func (o *Owner[T]) Value() (T, error) {
	var zero T
	if err := o.check(); err != nil {
		return zero, err
	}
	return o.val, nil
}

// Set replaces the payload through a valid handle.
func (o *Owner[T]) Set(value T) error {
	if err := o.check(); err != nil {
		return err
	}
	o.val = value
	return nil
}

// Take moves the payload out and invalidates the handle. The caller is the
// owner of the returned value from here on.
func (o *Owner[T]) Take() (T, error) {
	var zero T
	if err := o.check(); err != nil {
		return zero, err
	}
	v := o.val
	o.val = zero
	o.moved = true
	trace.Point(o.tracer, trace.KindDrop, trace.PrimOwner, o.handle, 0, o.label, "moved out")
	return v, nil
}

// Move transfers ownership to a fresh handle and invalidates the source.
// The new handle inherits the label, tracer and finalizer.
func (o *Owner[T]) Move() (*Owner[T], error) {
	v, err := o.Take()
	if err != nil {
		return nil, err
	}
	dst := &Owner[T]{
		val:       v,
		label:     o.label,
		handle:    trace.NextHandle(),
		finalizer: o.finalizer,
		tracer:    o.tracer,
	}
	trace.Point(dst.tracer, trace.KindAlloc, trace.PrimOwner, dst.handle, 1, dst.label, "moved in")
	return dst, nil
}

// Drop destroys the payload, running the finalizer if one was configured.
// Dropping a moved-from handle is a use-after-move fault; dropping twice is
// a double-drop fault.
func (o *Owner[T]) Drop() error {
	if o.moved {
		return o.traceFault(fault.UseAfterMove(o.label))
	}
	if o.dropped {
		return o.traceFault(fault.DoubleDrop(o.label))
	}
	o.dropped = true
	if o.finalizer != nil {
		o.finalizer(o.val)
	}
	var zero T
	o.val = zero
	trace.Point(o.tracer, trace.KindFree, trace.PrimOwner, o.handle, 0, o.label, "")
	return nil
}

// Valid reports whether the handle still owns its payload.
func (o *Owner[T]) Valid() bool {
	return !o.moved && !o.dropped
}

// Label returns the handle label.
func (o *Owner[T]) Label() string {
	return o.label
}

func (o *Owner[T]) check() error {
	if o.moved {
		return o.traceFault(fault.UseAfterMove(o.label))
	}
	if o.dropped {
		return o.traceFault(fault.UseAfterFree(o.label))
	}
	return nil
}

func (o *Owner[T]) traceFault(f *fault.Fault) error {
	trace.Point(o.tracer, trace.KindFault, trace.PrimOwner, o.handle, 0, o.label, f.Code.String())
	return f
}
