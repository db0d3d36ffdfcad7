package script

import (
	"fmt"
	"io"
	"strings"

	"grip/internal/cell"
	"grip/internal/fault"
	"grip/internal/lock"
	"grip/internal/own"
	"grip/internal/rc"
	"grip/internal/trace"
)

// Runner executes a scenario against a fresh primitive instance. Scenario
// payloads are int64; the walkthroughs demonstrate invariants, not data
// modeling.
type Runner struct {
	scenario *Scenario
	tracer   trace.Tracer
	w        io.Writer

	owners  map[string]*own.Owner[int64]
	rcs     map[string]*rc.Rc[int64]
	arcs    map[string]*rc.Arc[int64]
	theCell *cell.Cell[int64]
	refs    map[string]*cell.Ref[int64]
	muts    map[string]*cell.RefMut[int64]
	theLock *lock.Mutex[int64]
	guards  map[string]*lock.Guard[int64]
}

// NewRunner prepares a runner; the primitive instance is constructed on Run.
func NewRunner(s *Scenario, tracer trace.Tracer, w io.Writer) *Runner {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Runner{
		scenario: s,
		tracer:   tracer,
		w:        w,
		owners:   make(map[string]*own.Owner[int64]),
		rcs:      make(map[string]*rc.Rc[int64]),
		arcs:     make(map[string]*rc.Arc[int64]),
		refs:     make(map[string]*cell.Ref[int64]),
		muts:     make(map[string]*cell.RefMut[int64]),
		guards:   make(map[string]*lock.Guard[int64]),
	}
}

// Run constructs the primitive and drives every step. A step that faults as
// declared by want_fault is a success; any other fault aborts the run.
func (r *Runner) Run() error {
	s := r.scenario
	fmt.Fprintf(r.w, "scenario %q: %s(%d)\n", s.Name, s.Primitive, s.Value)

	switch s.Primitive {
	case "owner":
		r.owners["root"] = own.New(s.Value, own.WithLabel[int64](s.Name), own.WithTracer[int64](r.tracer))
	case "rc":
		r.rcs["root"] = rc.New(s.Value, rc.WithLabel[int64](s.Name), rc.WithTracer[int64](r.tracer))
	case "arc":
		r.arcs["root"] = rc.NewAtomic(s.Value, rc.WithLabel[int64](s.Name), rc.WithTracer[int64](r.tracer))
	case "cell":
		r.theCell = cell.New(s.Value, cell.WithLabel[int64](s.Name), cell.WithTracer[int64](r.tracer))
	case "mutex":
		r.theLock = lock.New(s.Value, lock.WithLabel(s.Name), lock.WithTracer(r.tracer))
	}

	for i, step := range s.Steps {
		outcome, err := r.step(step)
		if step.WantFault != "" {
			code := fault.CodeOf(err)
			if err == nil || code.String() != step.WantFault {
				return fmt.Errorf("step %d (%s): %w: want %s, got %v", i+1, step.Op, ErrFaultMismatch, step.WantFault, err)
			}
			fmt.Fprintf(r.w, "  %2d. %-10s -> %v (expected)\n", i+1, step.Op, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		fmt.Fprintf(r.w, "  %2d. %-10s -> %s\n", i+1, step.Op, outcome)
	}
	return nil
}

func (r *Runner) step(st Step) (string, error) {
	op := strings.ToLower(st.Op)
	from := st.From
	if from == "" {
		from = "root"
	}
	switch r.scenario.Primitive {
	case "owner":
		return r.ownerStep(op, st, from)
	case "rc":
		return r.rcStep(op, st, from)
	case "arc":
		return r.arcStep(op, st, from)
	case "cell":
		return r.cellStep(op, st, from)
	case "mutex":
		return r.mutexStep(op, st, from)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPrimitive, r.scenario.Primitive)
}

func (r *Runner) ownerStep(op string, st Step, from string) (string, error) {
	o := r.owners[from]
	if o == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
	}
	switch op {
	case "get":
		v, err := o.Value()
		return fmt.Sprintf("value %d", v), err
	case "set":
		return fmt.Sprintf("value = %d", st.Value), o.Set(st.Value)
	case "take":
		v, err := o.Take()
		return fmt.Sprintf("moved out %d, handle %q invalidated", v, from), err
	case "move":
		dst, err := o.Move()
		if err != nil {
			return "", err
		}
		name := st.Handle
		if name == "" {
			name = fmt.Sprintf("h%d", len(r.owners))
		}
		r.owners[name] = dst
		return fmt.Sprintf("ownership moved %q -> %q", from, name), nil
	case "drop":
		return "payload destroyed", o.Drop()
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

func (r *Runner) rcStep(op string, st Step, from string) (string, error) {
	h := r.rcs[from]
	if h == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
	}
	switch op {
	case "clone":
		c, err := h.Clone()
		if err != nil {
			return "", err
		}
		name := st.Handle
		if name == "" {
			name = fmt.Sprintf("h%d", len(r.rcs))
		}
		r.rcs[name] = c
		n, _ := c.StrongCount()
		return fmt.Sprintf("new handle %q, count %d", name, n), nil
	case "drop":
		return fmt.Sprintf("handle %q dropped", from), h.Drop()
	case "get":
		v, err := h.Get()
		return fmt.Sprintf("value %d", v), err
	case "count":
		n, err := h.StrongCount()
		return fmt.Sprintf("count %d", n), err
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

func (r *Runner) arcStep(op string, st Step, from string) (string, error) {
	h := r.arcs[from]
	if h == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
	}
	switch op {
	case "clone":
		c, err := h.Clone()
		if err != nil {
			return "", err
		}
		name := st.Handle
		if name == "" {
			name = fmt.Sprintf("h%d", len(r.arcs))
		}
		r.arcs[name] = c
		n, _ := c.StrongCount()
		return fmt.Sprintf("new handle %q, count %d", name, n), nil
	case "drop":
		return fmt.Sprintf("handle %q dropped", from), h.Drop()
	case "get":
		v, err := h.Get()
		return fmt.Sprintf("value %d", v), err
	case "count":
		n, err := h.StrongCount()
		return fmt.Sprintf("count %d", n), err
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

func (r *Runner) cellStep(op string, st Step, from string) (string, error) {
	switch op {
	case "borrow":
		g, err := r.theCell.Borrow()
		if err != nil {
			return "", err
		}
		name := st.Handle
		if name == "" {
			name = fmt.Sprintf("g%d", len(r.refs)+len(r.muts))
		}
		r.refs[name] = g
		return fmt.Sprintf("shared guard %q", name), nil
	case "borrow_mut":
		g, err := r.theCell.BorrowMut()
		if err != nil {
			return "", err
		}
		name := st.Handle
		if name == "" {
			name = fmt.Sprintf("g%d", len(r.refs)+len(r.muts))
		}
		r.muts[name] = g
		return fmt.Sprintf("exclusive guard %q", name), nil
	case "release":
		if g, ok := r.refs[from]; ok {
			return fmt.Sprintf("guard %q released", from), g.Release()
		}
		if g, ok := r.muts[from]; ok {
			return fmt.Sprintf("guard %q released", from), g.Release()
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
	case "get":
		if g, ok := r.refs[from]; ok {
			v, err := g.Get()
			return fmt.Sprintf("value %d", v), err
		}
		if g, ok := r.muts[from]; ok {
			v, err := g.Get()
			return fmt.Sprintf("value %d", v), err
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
	case "set":
		g, ok := r.muts[from]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
		}
		return fmt.Sprintf("value = %d", st.Value), g.Set(st.Value)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
}

func (r *Runner) mutexStep(op string, st Step, from string) (string, error) {
	switch op {
	case "lock":
		g, err := r.theLock.Lock()
		if err != nil {
			return "", err
		}
		name := st.Handle
		if name == "" {
			name = fmt.Sprintf("g%d", len(r.guards))
		}
		r.guards[name] = g
		return fmt.Sprintf("locked, guard %q", name), nil
	case "unlock":
		g, ok := r.guards[from]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
		}
		return "unlocked", g.Unlock()
	case "get":
		g, ok := r.guards[from]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
		}
		v, err := g.Get()
		return fmt.Sprintf("value %d", v), err
	case "set":
		g, ok := r.guards[from]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownHandle, from)
		}
		return fmt.Sprintf("value = %d", st.Value), g.Set(st.Value)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
}
