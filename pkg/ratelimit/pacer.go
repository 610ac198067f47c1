package ratelimit

import (
	"context"
	"time"
)

// Pacer enforces a minimum interval between successive calls to an upstream
// service. It is an explicit policy object replacing inline sleeps, so the
// pacing can be tuned and tested independently of the loops that use it.
//
// Pacing is sequential: the batch pipeline issues upstream calls one at a
// time, so Pacer is designed for use from a single goroutine per loop.
type Pacer struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	last     time.Time
}

// NewPacer creates a pacer with the given minimum interval between calls.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NewPacerWithClock creates a pacer with injectable time functions for tests.
func NewPacerWithClock(interval time.Duration, now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Pacer {
	return &Pacer{
		interval: interval,
		now:      now,
		sleep:    sleep,
	}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous call. The first call returns immediately. Wait returns early with
// the context error if ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := p.now()
	if !p.last.IsZero() {
		elapsed := now.Sub(p.last)
		if remaining := p.interval - elapsed; remaining > 0 {
			if err := p.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}

	p.last = p.now()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
