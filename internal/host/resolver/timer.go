package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// specializationTimer re-invokes the resolver's initialization entry point on
// a fixed period so specialization does not depend on an inbound request
// arriving. The callback owns no logic of its own.
type specializationTimer struct {
	interval time.Duration
	tick     func(ctx context.Context)
	logger   *slog.Logger

	cancel   context.CancelFunc
	stopOnce sync.Once
}

func newSpecializationTimer(
	interval time.Duration,
	logger *slog.Logger,
	tick func(ctx context.Context),
) *specializationTimer {
	return &specializationTimer{
		interval: interval,
		tick:     tick,
		logger:   logger.WithGroup("timer"),
	}
}

// start launches the ticker goroutine.
func (t *specializationTimer) start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				t.logger.Debug("Specialization timer stopped")
				return
			case <-ticker.C:
				t.tick(ctx)
			}
		}
	}()
}

// stop cancels the timer. Safe to call more than once, and safe to call
// while a tick is waiting on the resolver lock: the cancelled context stops
// any future ticks, and the in-flight tick becomes a no-op.
func (t *specializationTimer) stop() {
	t.stopOnce.Do(func() {
		if t.cancel != nil {
			t.cancel()
		}
	})
}
