package replay_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"grip/internal/replay"
	"grip/internal/trace"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.trace")
	events := []trace.Event{
		{Time: time.Now().Truncate(time.Microsecond), Seq: 1, Kind: trace.KindAlloc, Prim: trace.PrimArc, Handle: 3, Count: 1, Label: "root"},
		{Seq: 2, Kind: trace.KindClone, Prim: trace.PrimArc, Handle: 3, Count: 2},
		{Seq: 3, Kind: trace.KindDrop, Prim: trace.PrimArc, Handle: 3, Count: 1, Detail: "worker"},
		{Seq: 4, Kind: trace.KindFree, Prim: trace.PrimArc, Handle: 3, Count: 0},
	}

	if err := replay.Save(path, events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := replay.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(loaded))
	}
	for i := range events {
		if loaded[i].Seq != events[i].Seq ||
			loaded[i].Kind != events[i].Kind ||
			loaded[i].Prim != events[i].Prim ||
			loaded[i].Handle != events[i].Handle ||
			loaded[i].Count != events[i].Count ||
			loaded[i].Label != events[i].Label ||
			loaded[i].Detail != events[i].Detail {
			t.Errorf("event %d mismatch: expected %+v, got %+v", i, events[i], loaded[i])
		}
	}
}

func TestSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "run.trace")
	if err := replay.Save(path, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}

func TestLoadRejectsWrongSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.trace")

	// Same wire layout, wrong schema number.
	stale := struct {
		Schema  uint16
		SavedAt time.Time
		Events  []struct{}
	}{Schema: 999, SavedAt: time.Now()}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := msgpack.NewEncoder(f).Encode(&stale); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := replay.Load(path); !errors.Is(err, replay.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := replay.Load(filepath.Join(t.TempDir(), "absent.trace")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
