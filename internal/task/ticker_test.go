package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRecurring_RunsAndStops(t *testing.T) {
	var runs atomic.Int32
	r := NewRecurring("test", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, zap.NewNop())

	r.Start()
	time.Sleep(60 * time.Millisecond)
	r.Stop()

	got := runs.Load()
	if got == 0 {
		t.Fatal("action never ran")
	}

	// No more runs after Stop returns.
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != got {
		t.Errorf("action ran after Stop: %d -> %d", got, runs.Load())
	}
}

func TestRecurring_ContinuesAfterError(t *testing.T) {
	var runs atomic.Int32
	r := NewRecurring("failing", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}, zap.NewNop())

	r.Start()
	time.Sleep(60 * time.Millisecond)
	r.Stop()

	if runs.Load() < 2 {
		t.Errorf("runs = %d, want the loop to survive errors", runs.Load())
	}
}

func TestRecurring_StopIsSafeWithoutStart(t *testing.T) {
	r := NewRecurring("idle", time.Second, func(context.Context) error { return nil }, zap.NewNop())
	r.Stop()
	r.Stop()
}

func TestRecurring_DoubleStartIsNoop(t *testing.T) {
	var runs atomic.Int32
	r := NewRecurring("once", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, zap.NewNop())

	r.Start()
	r.Start()
	time.Sleep(35 * time.Millisecond)
	r.Stop()

	// A second goroutine would roughly double the count.
	if runs.Load() > 5 {
		t.Errorf("runs = %d, suspiciously many for one ticker", runs.Load())
	}
}
