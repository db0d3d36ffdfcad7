package demo

import (
	"io"

	"grip/internal/lock"
	"grip/internal/trace"
)

func init() {
	register(Demo{
		Name:  "poison",
		Short: "lock poisoning: a panicking critical section taints the payload",
		Run:   runPoison,
	})
}

func runPoison(w io.Writer, opts Options) error {
	st := opts.Styles
	ring := trace.NewRingTracer(0)

	st.Headerf(w, "poison: failing mid-critical-section must not go unnoticed")

	m := lock.New(int64(5),
		lock.WithLabel("fragile"),
		lock.WithTracer(ring),
	)

	// The critical section dies halfway through an update. The lock is
	// still released - a permanently held lock would be worse - but the
	// payload state is now suspect.
	func() {
		defer func() {
			if r := recover(); r != nil {
				st.Faultf(w, "critical section panicked: %v", r)
			}
		}()
		_ = m.With(func(v *int64) error {
			*v = 999 // half-finished update
			panic("disk on fire")
		})
	}()

	if _, err := m.Lock(); err != nil {
		st.Faultf(w, "next acquisition refuses: %v", err)
	} else {
		return &brokenDemoError{"poison"}
	}

	// The escape hatch: the caller asserts the payload was repaired.
	m.ClearPoison()
	if err := m.With(func(v *int64) error {
		*v = 5
		return nil
	}); err != nil {
		return err
	}
	st.OKf(w, "poison cleared, payload repaired")

	return epilogue(w, opts, ring)
}
