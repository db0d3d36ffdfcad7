package demo

import (
	"io"
	"strconv"

	"grip/internal/rc"
	"grip/internal/trace"
)

func init() {
	register(Demo{
		Name:  "shared",
		Short: "reference counting: destruction when the last handle drops",
		Run:   runShared,
	})
}

func runShared(w io.Writer, opts Options) error {
	st := opts.Styles
	ring := trace.NewRingTracer(0)

	st.Headerf(w, "shared: one payload, many handles, one destruction")

	destroyed := false
	rc1 := rc.New(int64(5),
		rc.WithLabel[int64]("rc1"),
		rc.WithTracer[int64](ring),
		rc.WithFinalizer[int64](func(int64) { destroyed = true }),
	)
	st.Countf(w, "rc1 created, count %s", mustCount(rc1))

	// Cloning increments the count; no payload copy happens.
	rc2, err := rc1.Clone()
	if err != nil {
		return err
	}
	st.Countf(w, "rc2 = clone(rc1), count %s", mustCount(rc1))

	rc3, err := rc1.Clone()
	if err != nil {
		return err
	}
	st.Countf(w, "rc3 = clone(rc1), count %s", mustCount(rc1))

	// Dropping handles decrements; the payload survives while any handle
	// lives.
	if err := rc2.Drop(); err != nil {
		return err
	}
	if err := rc3.Drop(); err != nil {
		return err
	}
	st.Countf(w, "rc2 and rc3 dropped, count %s", mustCount(rc1))

	v, err := rc1.Get()
	if err != nil {
		return err
	}
	st.Stepf(w, "payload still %d through rc1", v)

	if err := rc1.Drop(); err != nil {
		return err
	}
	if !destroyed {
		return &brokenDemoError{"shared"}
	}
	st.OKf(w, "last handle dropped, payload destroyed")

	if _, err := rc1.Get(); err != nil {
		st.Faultf(w, "reading rc1 after the drop: %v", err)
	} else {
		return &brokenDemoError{"shared"}
	}

	return epilogue(w, opts, ring)
}

func mustCount(h *rc.Rc[int64]) string {
	n, err := h.StrongCount()
	if err != nil {
		return "?"
	}
	return strconv.FormatInt(n, 10)
}
