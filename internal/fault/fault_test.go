package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"grip/internal/fault"
)

func TestCodeString(t *testing.T) {
	if got := fault.CodeUseAfterMove.String(); got != "GR1002" {
		t.Errorf("expected GR1002, got %s", got)
	}
	if got := fault.CodeLockPoisoned.String(); got != "GR3001" {
		t.Errorf("expected GR3001, got %s", got)
	}
}

func TestFaultError(t *testing.T) {
	f := fault.UseAfterMove("box")
	if got := f.Error(); got != "fault GR1002: box: handle used after move" {
		t.Errorf("unexpected message: %s", got)
	}
	f = fault.LeakDetected("2 payload(s) still alive")
	if got := f.Error(); got != "fault GR1099: 2 payload(s) still alive" {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("step 3: %w", fault.DoubleDrop("box"))
	if !errors.Is(err, &fault.Fault{Code: fault.CodeDoubleDrop}) {
		t.Errorf("expected errors.Is to match on code")
	}
	if errors.Is(err, &fault.Fault{Code: fault.CodeUseAfterFree}) {
		t.Errorf("expected different codes not to match")
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", fault.GuardReleased("cell"))
	if got := fault.CodeOf(err); got != fault.CodeGuardReleased {
		t.Errorf("expected %v, got %v", fault.CodeGuardReleased, got)
	}
	if got := fault.CodeOf(errors.New("plain")); got != 0 {
		t.Errorf("expected 0 for non-fault, got %v", got)
	}
}
