package fetch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces the per-worker inter-request delay: before each request a
// duration is drawn uniformly from [min, max], independent of batch size. A
// global token bucket underneath guarantees a cadence floor across workers.
type Pacer struct {
	minDelay time.Duration
	maxDelay time.Duration
	limiter  *rate.Limiter
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewPacer builds a pacer for the given delay range.
func NewPacer(minDelay, maxDelay time.Duration) *Pacer {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	// The floor admits one request per minimum delay globally; the random
	// per-worker sleep dominates in practice.
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Pacer{
		minDelay: minDelay,
		maxDelay: maxDelay,
		limiter:  rate.NewLimiter(limit, 1),
		sleep:    contextSleep,
	}
}

// Wait blocks for the drawn delay, aborting promptly on cancellation.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("cadence floor wait: %w", err)
	}
	delay := p.minDelay
	if span := p.maxDelay - p.minDelay; span > 0 {
		delay += rand.N(span)
	}
	return p.sleep(ctx, delay)
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("pacer sleep canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
