package auth

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically deletes expired session rows. Expired sessions are
// already invisible to GetSession; the sweep just keeps the table from
// growing without bound.
type Sweeper struct {
	sessions SessionStore
	interval time.Duration
	done     chan struct{}
}

// NewSweeper creates a session sweeper.
func NewSweeper(sessions SessionStore, interval time.Duration) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("session sweeper started", "interval", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Run once immediately on start
		s.sweep(ctx)

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				slog.Info("session sweeper stopping")
				close(s.done)
				return
			}
		}
	}()
}

// Wait blocks until the sweeper has fully stopped.
func (s *Sweeper) Wait() {
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	swept, err := s.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		slog.Error("failed to sweep expired sessions", "error", err)
		return
	}
	if swept > 0 {
		slog.Info("swept expired sessions", "count", swept)
	}
}
