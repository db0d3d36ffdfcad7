package trace

import (
	"sync/atomic"
	"time"
)

// Kind represents the type of lifecycle event.
type Kind uint8

const (
	// KindAlloc marks payload construction.
	KindAlloc Kind = iota + 1
	// KindClone marks a new handle aliasing an existing payload.
	KindClone
	// KindDrop marks a handle going away (count decrement for the counted
	// primitives, invalidation for Owner).
	KindDrop
	// KindFree marks payload destruction. Exactly one per allocation.
	KindFree
	// KindBorrow marks a shared guard being handed out.
	KindBorrow
	// KindBorrowMut marks an exclusive guard being handed out.
	KindBorrowMut
	// KindRelease marks a guard release.
	KindRelease
	// KindLock marks a lock acquisition.
	KindLock
	// KindUnlock marks a lock release.
	KindUnlock
	// KindPoison marks a mutex poisoned by a panicking critical section.
	KindPoison
	// KindFault marks a rejected operation (borrow conflict, use after
	// move, ...).
	KindFault
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindClone:
		return "clone"
	case KindDrop:
		return "drop"
	case KindFree:
		return "free"
	case KindBorrow:
		return "borrow"
	case KindBorrowMut:
		return "borrow_mut"
	case KindRelease:
		return "release"
	case KindLock:
		return "lock"
	case KindUnlock:
		return "unlock"
	case KindPoison:
		return "poison"
	case KindFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Prim identifies which primitive emitted the event.
type Prim uint8

const (
	// PrimOwner is the exclusive-ownership container.
	PrimOwner Prim = iota + 1
	// PrimRc is the non-atomic shared-ownership container.
	PrimRc
	// PrimArc is the atomic shared-ownership container.
	PrimArc
	// PrimCell is the interior-mutability container.
	PrimCell
	// PrimMutex is the mutual-exclusion wrapper.
	PrimMutex
	// PrimRWMutex is the reader/writer variant.
	PrimRWMutex
)

// String returns the string representation of Prim.
func (p Prim) String() string {
	switch p {
	case PrimOwner:
		return "owner"
	case PrimRc:
		return "rc"
	case PrimArc:
		return "arc"
	case PrimCell:
		return "cell"
	case PrimMutex:
		return "mutex"
	case PrimRWMutex:
		return "rwmutex"
	default:
		return "unknown"
	}
}

// Event represents a single lifecycle event.
type Event struct {
	Time   time.Time // wall-clock timestamp
	Seq    uint64    // global sequence number (monotonic)
	Kind   Kind      // event kind
	Prim   Prim      // emitting primitive
	Handle uint64    // payload identity (one per allocation, never reused)
	Count  int64     // reference count after the event, if meaningful
	Label  string    // user-supplied handle label, may be empty
	Detail string    // optional detail message
}

var globalSeq atomic.Uint64

// NextSeq returns the next global sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}

var globalHandle atomic.Uint64

// NextHandle returns a fresh payload identity. Handles are monotonically
// increasing and never reused within a run.
func NextHandle() uint64 {
	return globalHandle.Add(1)
}
