package fetch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// BackoffClock is the single shared anti-bot cooldown for one fetcher
// instance. When one worker detects a block, every worker sharing the clock
// observes the same window, since the block is a property of the shared
// network identity, not of the individual worker.
type BackoffClock struct {
	minWindow time.Duration
	maxWindow time.Duration
	now       func() time.Time

	mu    sync.Mutex
	until time.Time
}

// NewBackoffClock builds a clock drawing windows uniformly from [min, max].
func NewBackoffClock(minWindow, maxWindow time.Duration) *BackoffClock {
	if minWindow <= 0 {
		minWindow = 30 * time.Minute
	}
	if maxWindow < minWindow {
		maxWindow = minWindow
	}
	return &BackoffClock{
		minWindow: minWindow,
		maxWindow: maxWindow,
		now:       time.Now,
	}
}

// IsBlocked reports whether the backoff window is currently active.
func (c *BackoffClock) IsBlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.until)
}

// Enter starts a new backoff window and returns its duration. If a window is
// already active only the existing window is observed; exactly one caller
// triggers entry, concurrent detectors simply join it.
func (c *BackoffClock) Enter() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Before(c.until) {
		return c.until.Sub(now)
	}
	window := c.minWindow
	if span := c.maxWindow - c.minWindow; span > 0 {
		window += rand.N(span)
	}
	c.until = now.Add(window)
	return window
}

// Wait blocks until the backoff window clears or the context ends. It loops
// in case the window is extended by another block detection while waiting.
func (c *BackoffClock) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		remaining := c.until.Sub(c.now())
		c.mu.Unlock()
		if remaining <= 0 {
			return nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("backoff wait canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}
