package demo

import (
	"io"

	"grip/internal/own"
	"grip/internal/trace"
)

func init() {
	register(Demo{
		Name:  "owner",
		Short: "exclusive ownership: move invalidates the source handle",
		Run:   runOwner,
	})
}

func runOwner(w io.Writer, opts Options) error {
	st := opts.Styles
	ring := trace.NewRingTracer(0)

	st.Headerf(w, "owner: one handle owns the payload at a time")

	s1 := own.New("hello",
		own.WithLabel[string]("s1"),
		own.WithTracer[string](ring),
	)
	v, err := s1.Value()
	if err != nil {
		return err
	}
	st.Stepf(w, "s1 owns %q", v)

	// Transferring ownership invalidates the source handle.
	s2, err := s1.Move()
	if err != nil {
		return err
	}
	st.Stepf(w, "ownership moved s1 -> s2")

	if _, err := s1.Value(); err != nil {
		st.Faultf(w, "reading s1 after the move: %v", err)
	} else {
		st.Faultf(w, "reading s1 after the move unexpectedly succeeded")
		return &brokenDemoError{"owner"}
	}

	// The destination controls the payload's lifetime now.
	taken, err := s2.Take()
	if err != nil {
		return err
	}
	st.Stepf(w, "payload %q moved out of s2 to the caller", taken)

	if err := s2.Drop(); err != nil {
		st.Faultf(w, "dropping s2 after the move-out: %v", err)
	}

	return epilogue(w, opts, ring)
}
