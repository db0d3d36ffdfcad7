// Package cell implements the interior-mutability container.
//
// A Cell hands out runtime-checked guards: any number of shared guards, or
// exactly one exclusive guard, may be outstanding at a time. A conflicting
// request fails at the call that would create the conflict, never earlier.
// The borrow rule cannot be checked statically because guard lifetimes are
// scope-dependent at runtime; this is what distinguishes a Cell from plain
// exclusive ownership.
//
// A Cell is single-goroutine only. Sharing across goroutines requires an
// Arc with a Mutex nested inside instead.
package cell

import (
	"fmt"

	"fortio.org/safecast"

	"grip/internal/fault"
	"grip/internal/trace"
)

// GuardID identifies an active guard entry.
type GuardID uint32

// NoGuardID marks the absence of a guard.
const NoGuardID GuardID = 0

// BorrowKind differentiates shared vs exclusive guards.
type BorrowKind uint8

const (
	// BorrowShared is a read-only guard; many may coexist.
	BorrowShared BorrowKind = iota
	// BorrowMut is an exclusive read-write guard.
	BorrowMut
)

// String returns the string representation of BorrowKind.
func (k BorrowKind) String() string {
	if k == BorrowMut {
		return "exclusive"
	}
	return "shared"
}

// guardInfo stores metadata about each guard ever issued.
type guardInfo struct {
	ID       GuardID
	Kind     BorrowKind
	Released bool
}

// Cell wraps a payload with a runtime borrow-state machine:
// unborrowed, shared(n), or exclusive.
type Cell[T any] struct {
	val    T
	label  string
	handle uint64
	tracer trace.Tracer

	// infos[0] is a sentinel so GuardID 0 stays invalid.
	infos  []guardInfo
	shared []GuardID
	mut    GuardID
}

// Option configures a Cell at construction time.
type Option[T any] func(*Cell[T])

// WithLabel attaches a human-readable label used in faults and traces.
func WithLabel[T any](label string) Option[T] {
	return func(c *Cell[T]) { c.label = label }
}

// WithTracer attaches a lifecycle tracer.
func WithTracer[T any](t trace.Tracer) Option[T] {
	return func(c *Cell[T]) { c.tracer = t }
}

// New constructs an unborrowed Cell holding value.
func New[T any](value T, opts ...Option[T]) *Cell[T] {
	c := &Cell[T]{
		val:    value,
		handle: trace.NextHandle(),
		tracer: trace.Nop,
		infos:  []guardInfo{{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	trace.Point(c.tracer, trace.KindAlloc, trace.PrimCell, c.handle, 0, c.label, "")
	return c
}

// Borrow hands out a shared guard. It fails while an exclusive guard is
// outstanding.
func (c *Cell[T]) Borrow() (*Ref[T], error) {
	if c.mut != NoGuardID {
		return nil, c.traceFault(fault.BorrowConflictMut(c.label))
	}
	id := c.newGuard(BorrowShared)
	c.shared = append(c.shared, id)
	trace.Point(c.tracer, trace.KindBorrow, trace.PrimCell, c.handle, int64(len(c.shared)), c.label, "")
	return &Ref[T]{cell: c, id: id}, nil
}

// BorrowMut hands out the exclusive guard. It fails while any guard, shared
// or exclusive, is outstanding.
func (c *Cell[T]) BorrowMut() (*RefMut[T], error) {
	if len(c.shared) > 0 {
		return nil, c.traceFault(fault.BorrowConflictShared(c.label, len(c.shared)))
	}
	if c.mut != NoGuardID {
		return nil, c.traceFault(fault.BorrowConflictMut(c.label))
	}
	id := c.newGuard(BorrowMut)
	c.mut = id
	trace.Point(c.tracer, trace.KindBorrowMut, trace.PrimCell, c.handle, 1, c.label, "")
	return &RefMut[T]{cell: c, id: id}, nil
}

// Outstanding reports the current borrow state: the number of shared guards
// and whether the exclusive guard is out.
func (c *Cell[T]) Outstanding() (shared int, exclusive bool) {
	return len(c.shared), c.mut != NoGuardID
}

func (c *Cell[T]) newGuard(kind BorrowKind) GuardID {
	value, err := safecast.Conv[uint32](len(c.infos))
	if err != nil {
		panic(fmt.Errorf("cell guard table overflow: %w", err))
	}
	id := GuardID(value)
	c.infos = append(c.infos, guardInfo{ID: id, Kind: kind})
	return id
}

func (c *Cell[T]) info(id GuardID) *guardInfo {
	if id == NoGuardID || int(id) >= len(c.infos) {
		return nil
	}
	return &c.infos[id]
}

// release expires one guard and updates the borrow state.
func (c *Cell[T]) release(id GuardID) error {
	info := c.info(id)
	if info == nil || info.Released {
		return c.traceFault(fault.GuardReleased(c.label))
	}
	info.Released = true
	switch info.Kind {
	case BorrowShared:
		c.shared = dropGuardID(c.shared, id)
	case BorrowMut:
		if c.mut == id {
			c.mut = NoGuardID
		}
	}
	trace.Point(c.tracer, trace.KindRelease, trace.PrimCell, c.handle, int64(len(c.shared)), c.label, info.Kind.String())
	return nil
}

func (c *Cell[T]) guardLive(id GuardID) error {
	info := c.info(id)
	if info == nil || info.Released {
		return c.traceFault(fault.GuardReleased(c.label))
	}
	return nil
}

func (c *Cell[T]) traceFault(f *fault.Fault) error {
	trace.Point(c.tracer, trace.KindFault, trace.PrimCell, c.handle, int64(len(c.shared)), c.label, f.Code.String())
	return f
}

func dropGuardID(ids []GuardID, target GuardID) []GuardID {
	for i, id := range ids {
		if id == target {
			ids[i] = ids[len(ids)-1]
			return ids[:len(ids)-1]
		}
	}
	return ids
}
