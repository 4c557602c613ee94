package liveness

import (
	"context"
	"time"

	"github.com/oshokin/room-control/internal/config"
	"github.com/oshokin/room-control/internal/domain/room"
	"github.com/oshokin/room-control/internal/logger"
)

// Sweeper marks silent rooms as disconnected.
type Sweeper interface {
	Sweep(ctx context.Context, window time.Duration) ([]room.Directive, error)
}

// Monitor calls Sweep on a fixed period.
type Monitor struct {
	// sweeper owns the room records.
	sweeper Sweeper
	// window is the silence after which a room is disconnected.
	window time.Duration
	// interval is the sweep period.
	interval time.Duration
}

// New returns a monitor; non-positive durations fall back to the defaults.
func New(sweeper Sweeper, window, interval time.Duration) *Monitor {
	if window <= 0 {
		window = config.DefaultLivenessWindow
	}

	if interval <= 0 {
		interval = config.DefaultSweepInterval
	}

	return &Monitor{
		sweeper:  sweeper,
		window:   window,
		interval: interval,
	}
}

// Run sweeps every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "liveness")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logger.InfoKV(ctx, "Liveness monitor started", "window", m.window, "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Liveness monitor stopped")

			return
		case <-ticker.C:
			directives, err := m.sweeper.Sweep(ctx, m.window)
			if err != nil {
				logger.WarnKV(ctx, "Sweep finished with errors", "disconnected", len(directives), "error", err)

				continue
			}

			if len(directives) > 0 {
				logger.DebugKV(ctx, "Sweep finished", "disconnected", len(directives))
			}
		}
	}
}
