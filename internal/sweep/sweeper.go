// Package sweep deletes refresh token rows past their expiry on a recurring
// cadence, off the request path.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/forumkit/auth-service/internal/token"
)

type Sweeper struct {
	store    token.Store
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewSweeper(store token.Store, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{store: store, interval: interval, log: log, now: time.Now}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Sweep
// failures are logged, never fatal.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	count, err := s.store.SweepExpired(ctx, s.now())
	if err != nil {
		s.log.ErrorContext(ctx, "expired token sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.log.InfoContext(ctx, "swept expired refresh tokens", "deleted", count)
	}
}
