// Package stress drives the concurrency-safe primitives hard enough to
// surface races: Arc clone/drop churn across goroutines and Mutex increment
// contention. Each run verifies its own invariants (final count equals live
// handles, destruction exactly once, increments sum exactly) and reports
// the outcome.
package stress

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"grip/internal/lock"
	"grip/internal/rc"
	"grip/internal/trace"
)

// Tick reports progress from one worker; the TUI consumes these.
type Tick struct {
	Worker int
	Done   int
	Total  int
}

// ArcConfig controls the Arc churn run.
type ArcConfig struct {
	Workers int   // <=0 means GOMAXPROCS
	Ops     int   // clone/drop pairs per worker
	Payload int64 // initial payload value
	Tracer  trace.Tracer
	Ticks   chan<- Tick // optional progress sink
}

// ArcResult summarizes an Arc churn run.
type ArcResult struct {
	Workers    int
	Ops        int   // total clone/drop pairs executed
	FinalCount int64 // count observed on the root handle after all workers joined
	Payload    int64 // payload read back through the root handle
	Destroyed  int64 // finalizer invocations after the root handle dropped
}

// RunArc spawns workers that each clone the root handle, read the count
// snapshot, and drop the clone, Ops times. After all workers join the root
// count must be back to 1 and the payload untouched; dropping the root must
// run the finalizer exactly once.
func RunArc(ctx context.Context, cfg ArcConfig) (ArcResult, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ops := cfg.Ops
	if ops <= 0 {
		ops = 1000
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}

	var destroyed atomic.Int64
	root := rc.NewAtomic(cfg.Payload,
		rc.WithLabel[int64]("stress"),
		rc.WithTracer[int64](tracer),
		rc.WithFinalizer[int64](func(int64) { destroyed.Add(1) }),
	)

	// Each worker gets its own clone up front; handles are not shared,
	// only the payload box is.
	seeds := make([]*rc.Arc[int64], workers)
	for i := range seeds {
		c, err := root.Clone()
		if err != nil {
			return ArcResult{}, err
		}
		seeds[i] = c
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			seed := seeds[i]
			for n := 0; n < ops; n++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				c, err := seed.Clone()
				if err != nil {
					return err
				}
				if _, err := c.StrongCount(); err != nil {
					return err
				}
				if err := c.Drop(); err != nil {
					return err
				}
				if cfg.Ticks != nil && (n+1)%100 == 0 {
					cfg.Ticks <- Tick{Worker: i, Done: n + 1, Total: ops}
				}
			}
			return seed.Drop()
		})
	}
	if err := g.Wait(); err != nil {
		return ArcResult{}, err
	}

	res := ArcResult{Workers: workers, Ops: workers * ops}
	n, err := root.StrongCount()
	if err != nil {
		return res, err
	}
	res.FinalCount = n
	if n != 1 {
		return res, fmt.Errorf("after join: count %d, want 1", n)
	}
	v, err := root.Get()
	if err != nil {
		return res, err
	}
	res.Payload = v
	if err := root.Drop(); err != nil {
		return res, err
	}
	res.Destroyed = destroyed.Load()
	if res.Destroyed != 1 {
		return res, fmt.Errorf("payload destroyed %d times, want exactly once", res.Destroyed)
	}
	return res, nil
}

// MutexConfig controls the Mutex contention run.
type MutexConfig struct {
	Workers int // <=0 means GOMAXPROCS
	Ops     int // increments per worker
	Tracer  trace.Tracer
	Ticks   chan<- Tick // optional progress sink
}

// MutexResult summarizes a Mutex contention run.
type MutexResult struct {
	Workers int
	Ops     int
	Final   int64 // payload after all workers joined; must equal Ops
}

// RunMutex spawns workers that each increment the protected payload Ops
// times through the closure form, so release-on-all-paths covers every
// iteration. The final value must equal the total number of increments.
func RunMutex(ctx context.Context, cfg MutexConfig) (MutexResult, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ops := cfg.Ops
	if ops <= 0 {
		ops = 1000
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}

	m := lock.New(int64(0), lock.WithLabel("stress"), lock.WithTracer(tracer))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			for n := 0; n < ops; n++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if err := m.With(func(v *int64) error {
					*v++
					return nil
				}); err != nil {
					return err
				}
				if cfg.Ticks != nil && (n+1)%100 == 0 {
					cfg.Ticks <- Tick{Worker: i, Done: n + 1, Total: ops}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MutexResult{}, err
	}

	res := MutexResult{Workers: workers, Ops: workers * ops}
	var final int64
	if err := m.With(func(v *int64) error {
		final = *v
		return nil
	}); err != nil {
		return res, err
	}
	res.Final = final
	if final != int64(workers*ops) {
		return res, fmt.Errorf("final value %d, want %d", final, workers*ops)
	}
	return res, nil
}
