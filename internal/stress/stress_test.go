package stress_test

import (
	"context"
	"testing"

	"grip/internal/stress"
)

func TestRunArcSmall(t *testing.T) {
	res, err := stress.RunArc(context.Background(), stress.ArcConfig{
		Workers: 4,
		Ops:     200,
		Payload: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", res.Workers)
	}
	if res.Ops != 4*200 {
		t.Errorf("expected 800 total ops, got %d", res.Ops)
	}
	if res.FinalCount != 1 {
		t.Errorf("expected final count 1, got %d", res.FinalCount)
	}
	if res.Payload != 5 {
		t.Errorf("expected payload 5 intact, got %d", res.Payload)
	}
	if res.Destroyed != 1 {
		t.Errorf("expected exactly one destruction, got %d", res.Destroyed)
	}
}

func TestRunArcReportsTicks(t *testing.T) {
	ticks := make(chan stress.Tick, 1024)
	_, err := stress.RunArc(context.Background(), stress.ArcConfig{
		Workers: 2,
		Ops:     300,
		Payload: 1,
		Ticks:   ticks,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(ticks)

	seen := 0
	for tick := range ticks {
		seen++
		if tick.Worker < 0 || tick.Worker >= 2 {
			t.Errorf("tick from unknown worker %d", tick.Worker)
		}
		if tick.Done > tick.Total {
			t.Errorf("tick done %d exceeds total %d", tick.Done, tick.Total)
		}
	}
	if seen == 0 {
		t.Errorf("expected progress ticks")
	}
}

func TestRunArcCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stress.RunArc(ctx, stress.ArcConfig{Workers: 2, Ops: 100000}); err == nil {
		t.Errorf("expected cancellation error")
	}
}

func TestRunMutexSmall(t *testing.T) {
	res, err := stress.RunMutex(context.Background(), stress.MutexConfig{
		Workers: 4,
		Ops:     250,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Final != int64(4*250) {
		t.Errorf("lost increments: expected %d, got %d", 4*250, res.Final)
	}
}

func TestRunMutexDefaults(t *testing.T) {
	res, err := stress.RunMutex(context.Background(), stress.MutexConfig{Ops: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Workers < 1 {
		t.Errorf("expected defaulted worker count, got %d", res.Workers)
	}
	if res.Final != int64(res.Workers*10) {
		t.Errorf("expected %d, got %d", res.Workers*10, res.Final)
	}
}
