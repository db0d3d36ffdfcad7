package audit_test

import (
	"strings"
	"testing"

	"grip/internal/audit"
	"grip/internal/fault"
	"grip/internal/own"
	"grip/internal/rc"
	"grip/internal/trace"
)

func TestScanCleanRun(t *testing.T) {
	ring := trace.NewRingTracer(64)

	o := own.New(1, own.WithTracer[int](ring))
	if err := o.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := rc.New(2, rc.WithTracer[int](ring))
	clone, _ := root.Clone()
	_ = root.Drop()
	_ = clone.Drop()

	rep := audit.Scan(ring.Snapshot())
	if !rep.Clean() {
		t.Fatalf("expected clean report, got %s", rep)
	}
	if rep.Allocs != 2 || rep.Freed != 2 {
		t.Errorf("expected 2 allocated and 2 destroyed, got %d, %d", rep.Allocs, rep.Freed)
	}
	if rep.Err() != nil {
		t.Errorf("clean report must have nil error")
	}
}

func TestScanDetectsLeak(t *testing.T) {
	ring := trace.NewRingTracer(64)

	root := rc.New(2, rc.WithTracer[int](ring), rc.WithLabel[int]("lost"))
	clone, _ := root.Clone()
	_ = root.Drop()
	_ = clone // never dropped

	rep := audit.Scan(ring.Snapshot())
	if rep.Clean() {
		t.Fatalf("expected a leak")
	}
	if len(rep.Live) != 1 {
		t.Fatalf("expected 1 live allocation, got %d", len(rep.Live))
	}
	leak := rep.Live[0]
	if leak.Prim != trace.PrimRc || leak.Label != "lost" || leak.Count != 1 {
		t.Errorf("unexpected leak record: %+v", leak)
	}
	if fault.CodeOf(rep.Err()) != fault.CodeLeakDetected {
		t.Errorf("expected GR1099, got %v", rep.Err())
	}
	if !strings.Contains(rep.String(), "still alive") {
		t.Errorf("unexpected report text: %s", rep)
	}
}

func TestScanMovedOutIsNotALeak(t *testing.T) {
	ring := trace.NewRingTracer(64)

	o := own.New(5, own.WithTracer[int](ring))
	if _, err := o.Take(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep := audit.Scan(ring.Snapshot())
	if !rep.Clean() {
		t.Fatalf("moved-out payload reported as leak: %s", rep)
	}
	if rep.Moved != 1 {
		t.Errorf("expected 1 moved-out allocation, got %d", rep.Moved)
	}
}

func TestScanIgnoresWrapperPrims(t *testing.T) {
	events := []trace.Event{
		{Kind: trace.KindAlloc, Prim: trace.PrimCell, Handle: 1},
		{Kind: trace.KindAlloc, Prim: trace.PrimMutex, Handle: 2},
	}
	rep := audit.Scan(events)
	if rep.Allocs != 0 || !rep.Clean() {
		t.Errorf("wrappers must not participate in leak accounting: %+v", rep)
	}
}
