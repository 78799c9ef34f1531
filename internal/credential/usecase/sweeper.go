package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically removes revoked and expired credential registry rows.
// One sweep runs immediately on start so restarts do not postpone cleanup.
type Sweeper struct {
	lifecycle Lifecycle
	interval  time.Duration
	logger    *slog.Logger
}

// NewSweeper creates a new Sweeper.
func NewSweeper(lifecycle Lifecycle, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		lifecycle: lifecycle,
		interval:  interval,
		logger:    logger,
	}
}

// Start runs the sweep loop until the context is canceled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("starting credential sweeper", slog.Duration("interval", s.interval))

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping credential sweeper")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.lifecycle.Sweep(ctx, false); err != nil {
		s.logger.Error("failed to sweep credentials", slog.Any("error", err))
	}
}
