package demo

import (
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"grip/internal/rc"
	"grip/internal/trace"
)

func init() {
	register(Demo{
		Name:  "atomic",
		Short: "atomic reference counting shared across goroutines",
		Run:   runAtomic,
	})
}

func runAtomic(w io.Writer, opts Options) error {
	st := opts.Styles
	ring := trace.NewRingTracer(0)

	st.Headerf(w, "atomic: sharing one payload across goroutines")

	arc1 := rc.NewAtomic(int64(5),
		rc.WithLabel[int64]("arc1"),
		rc.WithTracer[int64](ring),
	)
	arc2, err := arc1.Clone()
	if err != nil {
		return err
	}
	arc3, err := arc1.Clone()
	if err != nil {
		return err
	}
	n, err := arc1.StrongCount()
	if err != nil {
		return err
	}
	st.Countf(w, "arc1 cloned twice, count %d", n)

	// Each goroutine owns its clone; the count snapshots are collected
	// after the join because the reading order is unspecified anyway.
	snapshots := make([]int64, 2)
	var g errgroup.Group
	for i, h := range []*rc.Arc[int64]{arc2, arc3} {
		i, h := i, h
		g.Go(func() error {
			c, err := h.StrongCount()
			if err != nil {
				return err
			}
			snapshots[i] = c
			return h.Drop()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, c := range snapshots {
		st.Stepf(w, "goroutine %d observed count %d", i+1, c)
	}

	n, err = arc1.StrongCount()
	if err != nil {
		return err
	}
	v, err := arc1.Get()
	if err != nil {
		return err
	}
	st.Countf(w, "goroutines joined, clones dropped: count %d, payload %d", n, v)
	if n != 1 || v != 5 {
		return fmt.Errorf("demo atomic: count %d payload %d after join, want 1 and 5", n, v)
	}

	if err := arc1.Drop(); err != nil {
		return err
	}
	st.OKf(w, "arc1 dropped, payload destroyed by the last handle")

	return epilogue(w, opts, ring)
}
