// Package fault defines the runtime fault taxonomy shared by the grip
// primitives. Every ownership or borrow violation surfaces as a *Fault
// carrying a stable numeric code.
package fault

import (
	"errors"
	"fmt"
)

// Code identifies the type of ownership fault.
type Code int

// Stable fault codes - do not change values.
const (
	CodeUseAfterMove        Code = 1002 // GR1002: use after move
	CodeUseAfterFree        Code = 1003 // GR1003: use after free
	CodeDoubleDrop          Code = 1004 // GR1004: double drop
	CodeLeakDetected        Code = 1099 // GR1099: payload leak detected
	CodeBorrowConflictShare Code = 2001 // GR2001: exclusive borrow blocked by shared guard
	CodeBorrowConflictMut   Code = 2002 // GR2002: borrow blocked by exclusive guard
	CodeGuardReleased       Code = 2003 // GR2003: guard used after release
	CodeLockPoisoned        Code = 3001 // GR3001: lock poisoned
)

// String returns the code as "GR1002" format.
func (c Code) String() string {
	return fmt.Sprintf("GR%d", c)
}

// Fault represents an invariant violation in one of the primitives.
// Faults are programmer errors, not recoverable conditions; callers are
// expected to surface them, never to retry.
type Fault struct {
	Code    Code
	Label   string // owning handle label, may be empty
	Message string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Label != "" {
		return fmt.Sprintf("fault %s: %s: %s", f.Code, f.Label, f.Message)
	}
	return fmt.Sprintf("fault %s: %s", f.Code, f.Message)
}

// Is reports whether target is a *Fault with the same code, which makes
// errors.Is(err, &Fault{Code: ...}) work for code-level matching.
func (f *Fault) Is(target error) bool {
	var other *Fault
	if !errors.As(target, &other) {
		return false
	}
	return f.Code == other.Code
}

// CodeOf extracts the fault code from err, or 0 if err is not a *Fault.
func CodeOf(err error) Code {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return 0
}

func newFault(code Code, label, msg string) *Fault {
	return &Fault{Code: code, Label: label, Message: msg}
}

// UseAfterMove reports access through a handle whose payload was moved out.
func UseAfterMove(label string) *Fault {
	return newFault(CodeUseAfterMove, label, "handle used after move")
}

// UseAfterFree reports access through a handle whose payload was destroyed.
func UseAfterFree(label string) *Fault {
	return newFault(CodeUseAfterFree, label, "handle used after payload was destroyed")
}

// DoubleDrop reports a second drop of an already dropped handle.
func DoubleDrop(label string) *Fault {
	return newFault(CodeDoubleDrop, label, "handle dropped twice")
}

// LeakDetected reports payloads still alive after a run finished.
func LeakDetected(detail string) *Fault {
	return newFault(CodeLeakDetected, "", detail)
}

// BorrowConflictShared reports an exclusive borrow attempted while shared
// guards are outstanding.
func BorrowConflictShared(label string, shared int) *Fault {
	return newFault(CodeBorrowConflictShare, label, fmt.Sprintf("exclusive borrow blocked by %d shared guard(s)", shared))
}

// BorrowConflictMut reports a borrow attempted while an exclusive guard is
// outstanding.
func BorrowConflictMut(label string) *Fault {
	return newFault(CodeBorrowConflictMut, label, "borrow blocked by outstanding exclusive guard")
}

// GuardReleased reports use of a guard after its release.
func GuardReleased(label string) *Fault {
	return newFault(CodeGuardReleased, label, "guard used after release")
}

// LockPoisoned reports a lock acquisition after a prior holder's critical
// section terminated abnormally.
func LockPoisoned(label string) *Fault {
	return newFault(CodeLockPoisoned, label, "lock poisoned by a prior holder's panic")
}
