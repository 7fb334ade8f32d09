package task

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recurring runs an action at a fixed period until stopped. Errors
// from the action are logged and the loop keeps going; the action
// itself is expected to be idempotent.
type Recurring struct {
	name   string
	period time.Duration
	action func(ctx context.Context) error
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRecurring(name string, period time.Duration, action func(ctx context.Context) error, logger *zap.Logger) *Recurring {
	return &Recurring{
		name:   name,
		period: period,
		action: action,
		logger: logger,
	}
}

// Start launches the loop. Calling Start on a running task is a no-op.
func (r *Recurring) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)
	r.logger.Info("Started recurring task",
		zap.String("task", r.name), zap.Duration("period", r.period))
}

func (r *Recurring) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.action(ctx); err != nil {
				r.logger.Error("Recurring task failed",
					zap.String("task", r.name), zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the loop and waits for the goroutine to exit.
// Safe to call more than once or before Start.
func (r *Recurring) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.logger.Info("Stopped recurring task", zap.String("task", r.name))
}
