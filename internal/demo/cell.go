package demo

import (
	"io"

	"grip/internal/cell"
	"grip/internal/trace"
)

func init() {
	register(Demo{
		Name:  "cell",
		Short: "interior mutability: borrow rules checked at runtime",
		Run:   runCell,
	})
}

func runCell(w io.Writer, opts Options) error {
	st := opts.Styles
	ring := trace.NewRingTracer(0)

	st.Headerf(w, "cell: one exclusive guard, or any number of shared ones")

	c := cell.New(int64(5),
		cell.WithLabel[int64]("counter"),
		cell.WithTracer[int64](ring),
	)

	shared, err := c.Borrow()
	if err != nil {
		return err
	}
	v, err := shared.Get()
	if err != nil {
		return err
	}
	st.Stepf(w, "shared guard reads %d", v)

	// The conflict surfaces at the call that would create it, not at
	// construction time.
	if _, err := c.BorrowMut(); err != nil {
		st.Faultf(w, "exclusive borrow while shared guard is out: %v", err)
	} else {
		return &brokenDemoError{"cell"}
	}

	if err := shared.Release(); err != nil {
		return err
	}
	st.Stepf(w, "shared guard released")

	mut, err := c.BorrowMut()
	if err != nil {
		return err
	}
	if err := mut.Update(func(v int64) int64 { return v + 1 }); err != nil {
		return err
	}
	if err := mut.Release(); err != nil {
		return err
	}
	st.Stepf(w, "exclusive guard mutated the payload")

	check, err := c.Borrow()
	if err != nil {
		return err
	}
	v, err = check.Get()
	if err != nil {
		return err
	}
	if err := check.Release(); err != nil {
		return err
	}
	st.OKf(w, "payload is now %d", v)
	if v != 6 {
		return &brokenDemoError{"cell"}
	}

	return epilogue(w, opts, ring)
}
