package cell_test

import (
	"testing"

	"grip/internal/cell"
	"grip/internal/fault"
)

func TestCellManySharedGuards(t *testing.T) {
	c := cell.New(5, cell.WithLabel[int]("counter"))
	guards := make([]*cell.Ref[int], 0, 3)
	for i := 0; i < 3; i++ {
		g, err := c.Borrow()
		if err != nil {
			t.Fatalf("shared borrow %d: %v", i, err)
		}
		guards = append(guards, g)
	}
	if shared, exclusive := c.Outstanding(); shared != 3 || exclusive {
		t.Fatalf("expected 3 shared and no exclusive, got %d, %v", shared, exclusive)
	}
	for i, g := range guards {
		v, err := g.Get()
		if err != nil {
			t.Fatalf("guard %d: %v", i, err)
		}
		if v != 5 {
			t.Errorf("guard %d: expected 5, got %d", i, v)
		}
	}
	for _, g := range guards {
		if err := g.Release(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if shared, _ := c.Outstanding(); shared != 0 {
		t.Errorf("expected no outstanding guards, got %d", shared)
	}
}

func TestCellSharedBlocksExclusive(t *testing.T) {
	c := cell.New(5)
	g, err := c.Borrow()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.BorrowMut(); fault.CodeOf(err) != fault.CodeBorrowConflictShare {
		t.Fatalf("expected GR2001 while shared guard is out, got %v", err)
	}

	// The shared guard stays usable after the failed request.
	if v, err := g.Get(); err != nil || v != 5 {
		t.Fatalf("expected 5 through surviving guard, got %d, %v", v, err)
	}
	if err := g.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Once released, the exclusive borrow succeeds and mutates 5 to 6.
	m, err := c.BorrowMut()
	if err != nil {
		t.Fatalf("unexpected error after release: %v", err)
	}
	if err := m.Update(func(v int) int { return v + 1 }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := m.Get(); v != 6 {
		t.Errorf("expected 6, got %d", v)
	}
	if err := m.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCellExclusiveBlocksEverything(t *testing.T) {
	c := cell.New("data")
	m, err := c.BorrowMut()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Borrow(); fault.CodeOf(err) != fault.CodeBorrowConflictMut {
		t.Errorf("expected GR2002 for shared during exclusive, got %v", err)
	}
	if _, err := c.BorrowMut(); fault.CodeOf(err) != fault.CodeBorrowConflictMut {
		t.Errorf("expected GR2002 for second exclusive, got %v", err)
	}
	if err := m.Set("changed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := c.Borrow()
	if err != nil {
		t.Fatalf("unexpected error after release: %v", err)
	}
	if v, _ := g.Get(); v != "changed" {
		t.Errorf("expected mutation to be visible, got %q", v)
	}
	if err := g.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCellReleasedGuardFaults(t *testing.T) {
	c := cell.New(1)

	g, _ := c.Borrow()
	if err := g.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Get(); fault.CodeOf(err) != fault.CodeGuardReleased {
		t.Errorf("expected GR2003 from released shared guard, got %v", err)
	}
	if err := g.Release(); fault.CodeOf(err) != fault.CodeGuardReleased {
		t.Errorf("expected GR2003 from double release, got %v", err)
	}

	m, _ := c.BorrowMut()
	if err := m.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Set(2); fault.CodeOf(err) != fault.CodeGuardReleased {
		t.Errorf("expected GR2003 from released exclusive guard, got %v", err)
	}
	if err := m.Update(func(v int) int { return v }); fault.CodeOf(err) != fault.CodeGuardReleased {
		t.Errorf("expected GR2003 from Update, got %v", err)
	}
}

func TestCellSharedReleaseOrderIrrelevant(t *testing.T) {
	c := cell.New(0)
	a, _ := c.Borrow()
	b, _ := c.Borrow()
	d, _ := c.Borrow()

	// Release out of order; the swap-remove bookkeeping must not confuse
	// the survivors.
	if err := b.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Get(); err != nil {
		t.Errorf("guard a must survive b's release: %v", err)
	}
	if _, err := d.Get(); err != nil {
		t.Errorf("guard d must survive b's release: %v", err)
	}
	if err := a.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.BorrowMut(); err != nil {
		t.Errorf("expected exclusive borrow after all released: %v", err)
	}
}
