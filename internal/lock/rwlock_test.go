package lock_test

import (
	"sync"
	"testing"

	"grip/internal/fault"
	"grip/internal/lock"
)

func TestRWMutexConcurrentReaders(t *testing.T) {
	m := lock.NewRW(int64(5))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.View(func(v int64) error {
				if v != 5 {
					t.Errorf("reader saw %d, expected 5", v)
				}
				return nil
			}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestRWMutexWriterExcludesReaders(t *testing.T) {
	m := lock.NewRW(int64(5))
	if err := m.With(func(v *int64) error {
		*v++
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.View(func(v int64) error {
		if v != 6 {
			t.Errorf("expected 6, got %d", v)
		}
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRWMutexGuards(t *testing.T) {
	m := lock.NewRW("payload")

	r, err := m.RLock()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := r.Get(); v != "payload" {
		t.Errorf("expected payload, got %q", v)
	}
	if err := r.Unlock(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Get(); fault.CodeOf(err) != fault.CodeGuardReleased {
		t.Errorf("expected GR2003, got %v", err)
	}

	w, err := m.Lock()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Set("updated"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Unlock(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Unlock(); fault.CodeOf(err) != fault.CodeGuardReleased {
		t.Errorf("expected GR2003 from second unlock, got %v", err)
	}
}

func TestRWMutexWriterPanicPoisonsReadersToo(t *testing.T) {
	m := lock.NewRW(1)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected the panic to be re-raised")
			}
		}()
		_ = m.With(func(*int) error { panic("boom") })
	}()

	if !m.Poisoned() {
		t.Fatalf("expected the lock to be poisoned")
	}
	if _, err := m.RLock(); fault.CodeOf(err) != fault.CodeLockPoisoned {
		t.Errorf("expected GR3001 from RLock, got %v", err)
	}
	if _, err := m.Lock(); fault.CodeOf(err) != fault.CodeLockPoisoned {
		t.Errorf("expected GR3001 from Lock, got %v", err)
	}
	if err := m.View(func(int) error { return nil }); fault.CodeOf(err) != fault.CodeLockPoisoned {
		t.Errorf("expected GR3001 from View, got %v", err)
	}
}
