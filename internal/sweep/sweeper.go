// Package sweep deletes expired refresh and verification token rows on a
// timer so the token tables do not grow without bound.
package sweep

import (
	"context"
	"log"
	"time"
)

// Store deletes rows whose expiry is before the cutoff.
type Store interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes expired rows from the given stores.
type Sweeper struct {
	tokens        Store
	verifications Store
	interval      time.Duration
}

// New returns a Sweeper. Either store may be nil. interval <= 0 disables Run.
func New(tokens, verifications Store, interval time.Duration) *Sweeper {
	return &Sweeper{tokens: tokens, verifications: verifications, interval: interval}
}

// Run sweeps on a ticker until ctx is cancelled. Failures are logged and the
// next tick retries; a sweep failure never takes the process down.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes expired rows from both stores with the current time as
// cutoff. Errors are logged, not returned.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := time.Now().UTC()
	if s.tokens != nil {
		n, err := s.tokens.DeleteExpired(ctx, now)
		if err != nil {
			log.Printf("sweep: refresh tokens: %v", err)
		} else if n > 0 {
			log.Printf("sweep: deleted %d expired refresh token rows", n)
		}
	}
	if s.verifications != nil {
		n, err := s.verifications.DeleteExpired(ctx, now)
		if err != nil {
			log.Printf("sweep: verification tokens: %v", err)
		} else if n > 0 {
			log.Printf("sweep: deleted %d expired verification token rows", n)
		}
	}
}
