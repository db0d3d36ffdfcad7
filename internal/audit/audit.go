// Package audit replays a recorded lifecycle trace and reports payloads
// that were allocated but never destroyed. The demos run it as an epilogue
// ("leak check"), and the tests use it to prove exactly-once destruction.
package audit

import (
	"fmt"
	"sort"
	"strings"

	"grip/internal/fault"
	"grip/internal/trace"
)

// movedOutDetail marks an Owner drop that transferred the payload to the
// caller; the allocation is no longer the harness's responsibility.
const movedOutDetail = "moved out"

// Leak describes one allocation still alive at the end of a run.
type Leak struct {
	Handle uint64
	Prim   trace.Prim
	Label  string
	Count  int64 // last observed reference count
}

// Report summarizes the lifecycle of all owning allocations in a trace.
// Cell and Mutex wrappers add behavior, not lifetime, so they do not
// participate in leak accounting.
type Report struct {
	Allocs int
	Freed  int
	Moved  int
	Live   []Leak
}

// Clean reports whether every allocation was destroyed or moved out.
func (r Report) Clean() bool {
	return len(r.Live) == 0
}

// Err returns a LeakDetected fault describing the live allocations, or nil
// when the trace is clean.
func (r Report) Err() error {
	if r.Clean() {
		return nil
	}
	return fault.LeakDetected(r.describe())
}

// String renders the report for the demo epilogue.
func (r Report) String() string {
	if r.Clean() {
		return fmt.Sprintf("leak check: ok (%d allocated, %d destroyed, %d moved out)", r.Allocs, r.Freed, r.Moved)
	}
	return "leak check: " + r.describe()
}

func (r Report) describe() string {
	const maxList = 8
	kindCounts := make(map[trace.Prim]int, 4)
	list := make([]string, 0, maxList)
	for _, leak := range r.Live {
		kindCounts[leak.Prim]++
		if len(list) < maxList {
			entry := fmt.Sprintf("%s#%d(rc=%d)", leak.Prim, leak.Handle, leak.Count)
			if leak.Label != "" {
				entry = fmt.Sprintf("%s#%d(%s,rc=%d)", leak.Prim, leak.Handle, leak.Label, leak.Count)
			}
			list = append(list, entry)
		}
	}
	msg := fmt.Sprintf("%d payload(s) still alive", len(r.Live))
	kindList := make([]string, 0, len(kindCounts))
	for kind, n := range kindCounts {
		kindList = append(kindList, fmt.Sprintf("%s=%d", kind, n))
	}
	sort.Strings(kindList)
	if len(kindList) > 0 {
		msg += " (" + strings.Join(kindList, ", ") + ")"
	}
	if len(list) > 0 {
		msg += ": " + strings.Join(list, ", ")
	}
	return msg
}

type allocState struct {
	prim  trace.Prim
	label string
	count int64
	freed bool
	moved bool
}

// Scan walks the events in sequence order and builds the report.
func Scan(events []trace.Event) Report {
	states := make(map[uint64]*allocState, 16)
	order := make([]uint64, 0, 16)

	for _, ev := range events {
		if !owning(ev.Prim) {
			continue
		}
		switch ev.Kind {
		case trace.KindAlloc:
			if _, ok := states[ev.Handle]; !ok {
				order = append(order, ev.Handle)
			}
			states[ev.Handle] = &allocState{prim: ev.Prim, label: ev.Label, count: ev.Count}
		case trace.KindClone, trace.KindDrop:
			st := states[ev.Handle]
			if st == nil {
				continue
			}
			st.count = ev.Count
			if ev.Kind == trace.KindDrop && ev.Detail == movedOutDetail {
				st.moved = true
			}
		case trace.KindFree:
			if st := states[ev.Handle]; st != nil {
				st.freed = true
				st.count = 0
			}
		}
	}

	var r Report
	for _, h := range order {
		st := states[h]
		r.Allocs++
		switch {
		case st.freed:
			r.Freed++
		case st.moved:
			r.Moved++
		default:
			r.Live = append(r.Live, Leak{Handle: h, Prim: st.prim, Label: st.label, Count: st.count})
		}
	}
	return r
}

func owning(p trace.Prim) bool {
	switch p {
	case trace.PrimOwner, trace.PrimRc, trace.PrimArc:
		return true
	default:
		return false
	}
}
