package demo

import (
	"io"

	"grip/internal/lock"
	"grip/internal/trace"
)

func init() {
	register(Demo{
		Name:  "mutex",
		Short: "mutual exclusion: guard-scoped access to the payload",
		Run:   runMutex,
	})
}

func runMutex(w io.Writer, opts Options) error {
	st := opts.Styles
	ring := trace.NewRingTracer(0)

	st.Headerf(w, "mutex: the payload is reachable only through the guard")

	m := lock.New(int64(5),
		lock.WithLabel("counter"),
		lock.WithTracer(ring),
	)

	g, err := m.Lock()
	if err != nil {
		return err
	}
	if err := g.Update(func(v int64) int64 { return v + 1 }); err != nil {
		return err
	}
	if err := g.Unlock(); err != nil {
		return err
	}
	st.Stepf(w, "locked, incremented, unlocked")

	g, err = m.Lock()
	if err != nil {
		return err
	}
	v, err := g.Get()
	if err != nil {
		return err
	}
	if err := g.Unlock(); err != nil {
		return err
	}
	st.OKf(w, "second acquisition reads %d", v)
	if v != 6 {
		return &brokenDemoError{"mutex"}
	}

	// A released guard grants nothing; the lock itself is already free.
	if _, err := g.Get(); err != nil {
		st.Faultf(w, "reading through the released guard: %v", err)
	} else {
		return &brokenDemoError{"mutex"}
	}

	// The closure form releases on every exit path.
	if err := m.With(func(v *int64) error {
		*v *= 2
		return nil
	}); err != nil {
		return err
	}
	var final int64
	if err := m.With(func(v *int64) error {
		final = *v
		return nil
	}); err != nil {
		return err
	}
	st.OKf(w, "closure form doubled the payload to %d", final)

	return epilogue(w, opts, ring)
}
