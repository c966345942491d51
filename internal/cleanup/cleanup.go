// Package cleanup periodically removes expired download pages
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// PageCleaner deletes expired download pages and reports how many were removed
type PageCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Sweeper runs the page cleaner on a fixed interval
type Sweeper struct {
	cleaner  PageCleaner
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper that runs every interval
func NewSweeper(cleaner PageCleaner, interval time.Duration) *Sweeper {
	return &Sweeper{
		cleaner:  cleaner,
		interval: interval,
		logger:   slog.Default(),
	}
}

// Run sweeps immediately and then on every tick until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Download page cleanup routine shutting down")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs a single cleanup pass. Failures are logged and retried on
// the next tick.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	start := time.Now()

	deleted, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to clean up expired download pages", "error", err)
		return 0
	}

	s.logger.Debug("Download page cleanup completed",
		"deleted", deleted,
		"duration", time.Since(start))
	return deleted
}
