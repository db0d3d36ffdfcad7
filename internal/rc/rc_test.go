package rc_test

import (
	"testing"

	"grip/internal/fault"
	"grip/internal/rc"
)

func TestRcCloneDropCounts(t *testing.T) {
	root := rc.New(5, rc.WithLabel[int]("shared"))
	if n, _ := root.StrongCount(); n != 1 {
		t.Fatalf("expected count 1, got %d", n)
	}

	a, err := root.Clone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := a.Clone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := root.StrongCount(); n != 3 {
		t.Fatalf("expected count 3 after two clones, got %d", n)
	}

	// Every handle sees the same payload.
	for i, h := range []*rc.Rc[int]{root, a, b} {
		v, err := h.Get()
		if err != nil {
			t.Fatalf("handle %d: unexpected error: %v", i, err)
		}
		if v != 5 {
			t.Errorf("handle %d: expected 5, got %d", i, v)
		}
	}

	if err := a.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := root.StrongCount(); n != 1 {
		t.Errorf("expected count back to 1, got %d", n)
	}
}

func TestRcDestroyAtZero(t *testing.T) {
	ran := 0
	root := rc.New("payload", rc.WithFinalizer(func(v string) {
		if v != "payload" {
			t.Errorf("finalizer saw %q", v)
		}
		ran++
	}))
	clone, err := root.Clone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := root.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran != 0 {
		t.Fatalf("finalizer ran before count reached zero")
	}
	if err := clone.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran != 1 {
		t.Fatalf("expected finalizer to run exactly once, ran %d times", ran)
	}
}

func TestRcUseAfterDropFaults(t *testing.T) {
	root := rc.New(1)
	clone, _ := root.Clone()
	if err := root.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := root.Get(); fault.CodeOf(err) != fault.CodeUseAfterFree {
		t.Errorf("expected GR1003 from Get, got %v", err)
	}
	if _, err := root.Clone(); fault.CodeOf(err) != fault.CodeUseAfterFree {
		t.Errorf("expected GR1003 from Clone, got %v", err)
	}
	if _, err := root.StrongCount(); fault.CodeOf(err) != fault.CodeUseAfterFree {
		t.Errorf("expected GR1003 from StrongCount, got %v", err)
	}
	if err := root.Drop(); fault.CodeOf(err) != fault.CodeDoubleDrop {
		t.Errorf("expected GR1004 on second drop, got %v", err)
	}

	// The clone is unaffected by the sibling's death.
	if v, err := clone.Get(); err != nil || v != 1 {
		t.Errorf("expected clone to stay live, got %d, %v", v, err)
	}
	if err := clone.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
