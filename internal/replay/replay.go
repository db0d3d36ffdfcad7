// Package replay persists recorded lifecycle traces to disk and loads them
// back, so a demonstration run can be inspected after the fact with
// `grip replay`.
package replay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"grip/internal/trace"
)

// Current schema version - increment when the payload format changes.
const schemaVersion uint16 = 1

// ErrSchemaMismatch indicates a trace file written by an incompatible version.
var ErrSchemaMismatch = errors.New("trace file schema mismatch")

// payload is the on-disk representation of a recorded trace.
type payload struct {
	Schema  uint16
	SavedAt time.Time
	Events  []record
}

// record mirrors trace.Event field by field. Keeping a separate type pins
// the wire layout independently of in-memory changes.
type record struct {
	Time   time.Time
	Seq    uint64
	Kind   uint8
	Prim   uint8
	Handle uint64
	Count  int64
	Label  string
	Detail string
}

// Save serializes events to path as msgpack. The write goes through a temp
// file and an atomic rename so a crashed run never leaves a torn file.
func Save(path string, events []trace.Event) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Printf("failed to remove temp file: %v", rmErr)
		}
	}()

	p := payload{
		Schema:  schemaVersion,
		SavedAt: time.Now(),
		Events:  make([]record, 0, len(events)),
	}
	for _, ev := range events {
		p.Events = append(p.Events, record{
			Time:   ev.Time,
			Seq:    ev.Seq,
			Kind:   uint8(ev.Kind),
			Prim:   uint8(ev.Prim),
			Handle: ev.Handle,
			Count:  ev.Count,
			Label:  ev.Label,
			Detail: ev.Detail,
		})
	}

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&p); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load reads a trace saved by Save.
func Load(path string) ([]trace.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close() //nolint:errcheck
	}()

	var p payload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%s: failed to decode trace: %w", path, err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("%s: got schema %d, want %d: %w", path, p.Schema, schemaVersion, ErrSchemaMismatch)
	}

	events := make([]trace.Event, 0, len(p.Events))
	for _, r := range p.Events {
		events = append(events, trace.Event{
			Time:   r.Time,
			Seq:    r.Seq,
			Kind:   trace.Kind(r.Kind),
			Prim:   trace.Prim(r.Prim),
			Handle: r.Handle,
			Count:  r.Count,
			Label:  r.Label,
			Detail: r.Detail,
		})
	}
	return events, nil
}
