package demo

import (
	"io"

	"golang.org/x/sync/errgroup"

	"grip/internal/lock"
	"grip/internal/trace"
)

func init() {
	register(Demo{
		Name:  "rw",
		Short: "reader/writer lock: many readers, one writer",
		Run:   runRW,
	})
}

func runRW(w io.Writer, opts Options) error {
	st := opts.Styles
	ring := trace.NewRingTracer(0)

	st.Headerf(w, "rw: shared reads, exclusive writes")

	m := lock.NewRW(int64(5),
		lock.WithLabel("shared-state"),
		lock.WithTracer(ring),
	)

	// Readers overlap freely.
	reads := make([]int64, 3)
	var g errgroup.Group
	for i := range reads {
		i := i
		g.Go(func() error {
			return m.View(func(v int64) error {
				reads[i] = v
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	st.Stepf(w, "three concurrent readers read %d, %d, %d", reads[0], reads[1], reads[2])

	// The writer waits for all readers and gets the lock alone.
	if err := m.With(func(v *int64) error {
		*v++
		return nil
	}); err != nil {
		return err
	}
	var final int64
	if err := m.View(func(v int64) error {
		final = v
		return nil
	}); err != nil {
		return err
	}
	st.OKf(w, "writer incremented to %d", final)
	if final != 6 {
		return &brokenDemoError{"rw"}
	}

	return epilogue(w, opts, ring)
}
