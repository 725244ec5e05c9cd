package service

import (
	"context"
	"time"
)

// PacingPolicy spaces out records to stay under the judge's rate limits.
type PacingPolicy interface {
	// Pause blocks for the policy delay or until ctx is done.
	Pause(ctx context.Context) error
}

// FixedPacing waits the same delay after every record.
type FixedPacing struct {
	Delay time.Duration
}

// Pause implements PacingPolicy.
func (p FixedPacing) Pause(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoPacing never waits.
type NoPacing struct{}

// Pause implements PacingPolicy.
func (NoPacing) Pause(ctx context.Context) error {
	return ctx.Err()
}
