package lock

import (
	"sync"

	"grip/internal/fault"
	"grip/internal/trace"
)

// RWMutex wraps a payload behind a reader/writer lock: any number of
// readers, or exactly one writer. Poisoning follows the Mutex policy and is
// set on the write side only; readers cannot leave the payload half-updated.
type RWMutex[T any] struct {
	mu       sync.RWMutex
	val      T
	poisoned bool

	label  string
	handle uint64
	tracer trace.Tracer
}

// NewRW constructs an unlocked RWMutex holding value.
func NewRW[T any](value T, opts ...Option) *RWMutex[T] {
	cfg := config{tracer: trace.Nop}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &RWMutex[T]{
		val:    value,
		label:  cfg.label,
		handle: trace.NextHandle(),
		tracer: cfg.tracer,
	}
	trace.Point(m.tracer, trace.KindAlloc, trace.PrimRWMutex, m.handle, 0, m.label, "")
	return m
}

// Lock acquires the write lock and returns the exclusive guard.
func (m *RWMutex[T]) Lock() (*WGuard[T], error) {
	m.mu.Lock()
	if m.poisoned {
		m.mu.Unlock()
		return nil, m.traceFault(fault.LockPoisoned(m.label))
	}
	trace.Point(m.tracer, trace.KindLock, trace.PrimRWMutex, m.handle, 0, m.label, "write")
	return &WGuard[T]{m: m}, nil
}

// RLock acquires a read lock and returns a shared guard. A poisoned lock
// fails readers too: the payload state is unknown.
func (m *RWMutex[T]) RLock() (*RGuard[T], error) {
	m.mu.RLock()
	if m.poisoned {
		m.mu.RUnlock()
		return nil, m.traceFault(fault.LockPoisoned(m.label))
	}
	trace.Point(m.tracer, trace.KindLock, trace.PrimRWMutex, m.handle, 0, m.label, "read")
	return &RGuard[T]{m: m}, nil
}

// With runs f with exclusive write access, releasing on every exit path.
// A panic inside f poisons the lock and is re-raised.
func (m *RWMutex[T]) With(f func(v *T) error) error {
	g, err := m.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			trace.Point(m.tracer, trace.KindPoison, trace.PrimRWMutex, m.handle, 0, m.label, "panic in critical section")
			_ = g.Unlock() //nolint:errcheck
			panic(r)
		}
	}()
	ferr := f(&m.val)
	if uerr := g.Unlock(); uerr != nil && ferr == nil {
		return uerr
	}
	return ferr
}

// View runs f with shared read access, releasing on every exit path.
func (m *RWMutex[T]) View(f func(v T) error) error {
	g, err := m.RLock()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = g.Unlock() //nolint:errcheck
			panic(r)
		}
	}()
	ferr := f(m.val)
	if uerr := g.Unlock(); uerr != nil && ferr == nil {
		return uerr
	}
	return ferr
}

// Poisoned reports whether a prior writer's critical section panicked.
func (m *RWMutex[T]) Poisoned() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.poisoned
}

// Label returns the wrapper label.
func (m *RWMutex[T]) Label() string {
	return m.label
}

func (m *RWMutex[T]) traceFault(f *fault.Fault) error {
	trace.Point(m.tracer, trace.KindFault, trace.PrimRWMutex, m.handle, 0, m.label, f.Code.String())
	return f
}

// WGuard grants exclusive write access until released.
type WGuard[T any] struct {
	m        *RWMutex[T]
	released bool
}

// Get reads the payload through a live guard.
func (g *WGuard[T]) Get() (T, error) {
	var zero T
	if g.released {
		return zero, g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	return g.m.val, nil
}

// Set replaces the payload through a live guard.
func (g *WGuard[T]) Set(value T) error {
	if g.released {
		return g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	g.m.val = value
	return nil
}

// Unlock releases the write lock.
func (g *WGuard[T]) Unlock() error {
	if g.released {
		return g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	g.released = true
	trace.Point(g.m.tracer, trace.KindUnlock, trace.PrimRWMutex, g.m.handle, 0, g.m.label, "write")
	g.m.mu.Unlock()
	return nil
}

// RGuard grants shared read access until released.
type RGuard[T any] struct {
	m        *RWMutex[T]
	released bool
}

// Get reads the payload through a live guard.
func (g *RGuard[T]) Get() (T, error) {
	var zero T
	if g.released {
		return zero, g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	return g.m.val, nil
}

// Unlock releases the read lock.
func (g *RGuard[T]) Unlock() error {
	if g.released {
		return g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	g.released = true
	trace.Point(g.m.tracer, trace.KindUnlock, trace.PrimRWMutex, g.m.handle, 0, g.m.label, "read")
	g.m.mu.RUnlock()
	return nil
}
