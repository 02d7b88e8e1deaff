package scheduler

import (
	"context"
	"sync"
	"time"

	"todo-backend/pkg/logging"
)

// ExpiredSessionStore is the repository capability the sweeper needs.
type ExpiredSessionStore interface {
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweeper periodically drops stored refresh tokens that have expired,
// so a stale token can no longer match even if its signature still verifies.
type SessionSweeper struct {
	store    ExpiredSessionStore
	interval time.Duration
	log      logging.Logger
	now      func() time.Time

	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSessionSweeper creates a new sweeper. An interval <= 0 disables it.
func NewSessionSweeper(store ExpiredSessionStore, interval time.Duration, log logging.Logger) *SessionSweeper {
	return &SessionSweeper{
		store:    store,
		interval: interval,
		log:      log.With("component", "session_sweeper"),
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop. It returns immediately.
func (s *SessionSweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info(ctx, "session sweeper disabled")
		close(s.done)
		return
	}

	s.log.Info(ctx, "starting session sweeper", "interval", s.interval.String())

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stopChan:
				s.log.Info(ctx, "session sweeper stopped")
				return
			case <-ctx.Done():
				s.log.Info(ctx, "session sweeper stopped", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	cleared, err := s.store.ClearExpiredRefreshTokens(ctx, s.now())
	if err != nil {
		s.log.Error(ctx, "clearing expired sessions failed", "error", err)
		return
	}
	if cleared > 0 {
		s.log.Info(ctx, "cleared expired sessions", "count", cleared)
	}
}
