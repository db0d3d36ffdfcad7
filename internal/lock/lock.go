// Package lock implements the mutual-exclusion wrappers.
//
// A Mutex grants exactly one goroutine access to its payload at a time:
// Lock blocks until the lock is free and returns a guard; the payload is
// reachable only through the guard. Releasing on every exit path is
// load-bearing, so the closure form With releases even when the critical
// section panics.
//
// Poisoning policy: propagate-as-error. A panic escaping a With/View
// critical section marks the mutex poisoned before the panic is re-raised;
// every later acquisition fails with a LockPoisoned fault instead of
// silently granting access to a payload left in an unknown state.
// Poisoning is only detectable on the closure paths; callers driving a bare
// guard arrange their own defer.
package lock

import (
	"sync"

	"grip/internal/fault"
	"grip/internal/trace"
)

// Mutex wraps a payload behind a mutual-exclusion lock.
// State machine: Unlocked --Lock--> Locked --guard release--> Unlocked.
// No other transitions exist.
type Mutex[T any] struct {
	mu       sync.Mutex
	val      T
	poisoned bool

	label  string
	handle uint64
	tracer trace.Tracer
}

// Option configures a lock wrapper at construction time.
type Option func(*config)

type config struct {
	label  string
	tracer trace.Tracer
}

// WithLabel attaches a human-readable label used in faults and traces.
func WithLabel(label string) Option {
	return func(c *config) { c.label = label }
}

// WithTracer attaches a lifecycle tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

// New constructs an unlocked Mutex holding value.
func New[T any](value T, opts ...Option) *Mutex[T] {
	cfg := config{tracer: trace.Nop}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Mutex[T]{
		val:    value,
		label:  cfg.label,
		handle: trace.NextHandle(),
		tracer: cfg.tracer,
	}
	trace.Point(m.tracer, trace.KindAlloc, trace.PrimMutex, m.handle, 0, m.label, "")
	return m
}

// Lock blocks the calling goroutine until the lock is free, then returns a
// guard granting exclusive access to the payload. When multiple callers
// contend, exactly one wins; the others block until the guard is released.
// There is no timeout variant and a blocked Lock is not interruptible.
//
// Lock fails only when the mutex is poisoned; the lock is released again
// before the fault is returned.
func (m *Mutex[T]) Lock() (*Guard[T], error) {
	m.mu.Lock()
	if m.poisoned {
		m.mu.Unlock()
		return nil, m.traceFault(fault.LockPoisoned(m.label))
	}
	trace.Point(m.tracer, trace.KindLock, trace.PrimMutex, m.handle, 0, m.label, "")
	return &Guard[T]{m: m}, nil
}

// With runs f with exclusive access to the payload, releasing the lock on
// every exit path. A panic inside f poisons the mutex and is re-raised.
func (m *Mutex[T]) With(f func(v *T) error) error {
	g, err := m.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			m.poison()
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

// Poisoned reports whether a prior holder's critical section panicked.
func (m *Mutex[T]) Poisoned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poisoned
}

// ClearPoison resets a poisoned mutex. Demonstration escape hatch: the
// caller asserts the payload was repaired.
func (m *Mutex[T]) ClearPoison() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poisoned = false
}

// Label returns the wrapper label.
func (m *Mutex[T]) Label() string {
	return m.label
}

// poison is called while the lock is still held.
func (m *Mutex[T]) poison() {
	m.poisoned = true
	trace.Point(m.tracer, trace.KindPoison, trace.PrimMutex, m.handle, 0, m.label, "panic in critical section")
}

func (m *Mutex[T]) traceFault(f *fault.Fault) error {
	trace.Point(m.tracer, trace.KindFault, trace.PrimMutex, m.handle, 0, m.label, f.Code.String())
	return f
}

// Guard grants exclusive access to a Mutex payload until released.
type Guard[T any] struct {
	m        *Mutex[T]
	released bool
}

// Get reads the payload through a live guard.
func (g *Guard[T]) Get() (T, error) {
	var zero T
	if g.released {
		return zero, g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	return g.m.val, nil
}

// Set replaces the payload through a live guard.
func (g *Guard[T]) Set(value T) error {
	if g.released {
		return g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	g.m.val = value
	return nil
}

// Update applies f to the payload in place.
func (g *Guard[T]) Update(f func(T) T) error {
	if g.released {
		return g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	g.m.val = f(g.m.val)
	return nil
}

// Unlock releases the lock. A second unlock through the same guard is a
// fault and does not touch the lock.
func (g *Guard[T]) Unlock() error {
	if g.released {
		return g.m.traceFault(fault.GuardReleased(g.m.label))
	}
	g.released = true
	trace.Point(g.m.tracer, trace.KindUnlock, trace.PrimMutex, g.m.handle, 0, g.m.label, "")
	g.m.mu.Unlock()
	return nil
}
