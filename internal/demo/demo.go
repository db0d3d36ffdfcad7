// Package demo holds the runnable demonstrations. Each one is independent:
// it constructs its primitives, narrates the state transitions to the
// writer, and finishes with a leak check over the recorded trace. A fault
// shown along the way is usually the point of the demonstration; a fault
// returned from Run is not.
package demo

import (
	"fmt"
	"io"
	"sort"

	"grip/internal/audit"
	"grip/internal/replay"
	"grip/internal/trace"
	"grip/internal/ui"
)

// Options configures a demonstration run.
type Options struct {
	Styles     ui.Styles
	ShowTrace  bool   // dump the recorded trace after the narration
	RecordPath string // save the recorded trace as msgpack, if set
}

// Demo is one registered demonstration.
type Demo struct {
	Name  string
	Short string
	Run   func(w io.Writer, opts Options) error
}

var registry = map[string]Demo{}

func register(d Demo) {
	registry[d.Name] = d
}

// Lookup returns the named demonstration.
func Lookup(name string) (Demo, bool) {
	d, ok := registry[name]
	return d, ok
}

// All returns every demonstration sorted by name.
func All() []Demo {
	out := make([]Demo, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// brokenDemoError marks an invariant the demonstration relies on failing
// to hold; it should never happen.
type brokenDemoError struct {
	name string
}

func (e *brokenDemoError) Error() string {
	return "demo " + e.name + ": expected fault did not occur"
}

// epilogue dumps the trace if requested, saves it if requested, and runs
// the leak check. The leak check failing means the demonstration itself is
// broken.
func epilogue(w io.Writer, opts Options, ring *trace.RingTracer) error {
	events := ring.Snapshot()

	if opts.ShowTrace {
		fmt.Fprintln(w)
		opts.Styles.Headerf(w, "trace (%d events)", len(events))
		if err := ring.Dump(w, trace.FormatText); err != nil {
			return err
		}
	}
	if opts.RecordPath != "" {
		if err := replay.Save(opts.RecordPath, events); err != nil {
			return err
		}
		opts.Styles.Stepf(w, "trace saved to %s", opts.RecordPath)
	}

	rep := audit.Scan(events)
	fmt.Fprintln(w)
	if rep.Clean() {
		opts.Styles.OKf(w, "%s", rep)
	} else {
		opts.Styles.Faultf(w, "%s", rep)
	}
	return rep.Err()
}
