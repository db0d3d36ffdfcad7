package rc_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"grip/internal/fault"
	"grip/internal/rc"
)

func TestArcCloneDropAcrossGoroutines(t *testing.T) {
	var destroyed atomic.Int64
	root := rc.NewAtomic(int64(5), rc.WithLabel[int64]("churn"), rc.WithFinalizer(func(int64) {
		destroyed.Add(1)
	}))

	const workers = 8
	const ops = 2000

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		seed, err := root.Clone()
		if err != nil {
			t.Fatalf("worker seed clone: %v", err)
		}
		g.Go(func() error {
			for i := 0; i < ops; i++ {
				c, err := seed.Clone()
				if err != nil {
					return err
				}
				if _, err := c.StrongCount(); err != nil {
					return err
				}
				if err := c.Drop(); err != nil {
					return err
				}
			}
			return seed.Drop()
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n, err := root.StrongCount(); err != nil || n != 1 {
		t.Fatalf("expected count 1 after all workers joined, got %d, %v", n, err)
	}
	if v, err := root.Get(); err != nil || v != 5 {
		t.Fatalf("expected payload 5 intact, got %d, %v", v, err)
	}
	if destroyed.Load() != 0 {
		t.Fatalf("payload destroyed while root still live")
	}
	if err := root.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if destroyed.Load() != 1 {
		t.Fatalf("expected finalizer to run exactly once, ran %d times", destroyed.Load())
	}
}

func TestArcConcurrentObserversThenDrop(t *testing.T) {
	root := rc.NewAtomic(int64(5))
	a, err := root.Clone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := root.Clone()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := root.StrongCount(); n != 3 {
		t.Fatalf("expected count 3, got %d", n)
	}

	var wg sync.WaitGroup
	for _, h := range []*rc.Arc[int64]{a, b} {
		h := h
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := h.Get(); err != nil || v != 5 {
				t.Errorf("expected payload 5, got %d, %v", v, err)
			}
			if _, err := h.StrongCount(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if err := h.Drop(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n, _ := root.StrongCount(); n != 1 {
		t.Errorf("expected count 1 after goroutines dropped, got %d", n)
	}
	if v, _ := root.Get(); v != 5 {
		t.Errorf("expected payload 5, got %d", v)
	}
	if err := root.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestArcHandleFaultsAfterDrop(t *testing.T) {
	root := rc.NewAtomic(1)
	clone, _ := root.Clone()
	if err := clone.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := clone.Get(); fault.CodeOf(err) != fault.CodeUseAfterFree {
		t.Errorf("expected GR1003, got %v", err)
	}
	if err := clone.Drop(); fault.CodeOf(err) != fault.CodeDoubleDrop {
		t.Errorf("expected GR1004, got %v", err)
	}
	if err := root.Drop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
