package fetch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/citydesk/newspipe/internal/pipeline"
)

// transport executes one HTTP GET. Satisfied by CollyTransport; tests swap
// in fakes.
type transport interface {
	Fetch(ctx context.Context, url string) (pipeline.FetchResult, error)
}

// Config controls the fetcher.
type Config struct {
	// Timeout bounds each individual fetch call.
	Timeout time.Duration
	// BlockRetryLimit caps how many backoff cycles a single URL survives
	// before being failed as blocked.
	BlockRetryLimit int
}

// Fetcher retrieves raw content under the global request cadence. The
// instance is shared by all workers: the pacer and the backoff clock are
// common state, so one detected block suspends every caller.
type Fetcher struct {
	cfg      Config
	tr       transport
	pacer    *Pacer
	backoff  *BackoffClock
	detector *BlockDetector
	retry    *ExponentialRetryPolicy
	logger   *zap.Logger
}

// New wires the fetcher subsystems together.
func New(
	cfg Config,
	tr transport,
	pacer *Pacer,
	backoff *BackoffClock,
	detector *BlockDetector,
	retry *ExponentialRetryPolicy,
	logger *zap.Logger,
) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BlockRetryLimit <= 0 {
		cfg.BlockRetryLimit = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		cfg:      cfg,
		tr:       tr,
		pacer:    pacer,
		backoff:  backoff,
		detector: detector,
		retry:    retry,
		logger:   logger,
	}
}

// Fetch implements pipeline.Fetcher. A detected block enters the shared
// backoff window and the URL is retried after it clears, without consuming
// a network-retry attempt; a URL that exhausts retries yields a typed
// FetchError, never a silent drop.
func (f *Fetcher) Fetch(ctx context.Context, url string) (pipeline.FetchResult, error) {
	for blockCycles := 0; ; blockCycles++ {
		if f.backoff.IsBlocked() {
			f.logger.Info("fetch waiting for backoff window", zap.String("url", url))
			if err := f.backoff.Wait(ctx); err != nil {
				return pipeline.FetchResult{}, &pipeline.FetchError{Kind: pipeline.FetchErrTimeout, URL: url, Err: err}
			}
		}

		result, err := f.fetchWithRetries(ctx, url)
		if err != nil {
			return pipeline.FetchResult{}, err
		}

		if !f.detector.Blocked(result.StatusCode, result.Body) {
			return result, nil
		}

		window := f.backoff.Enter()
		f.logger.Warn("anti-bot block detected, entering backoff",
			zap.String("url", url),
			zap.Int("status_code", result.StatusCode),
			zap.Duration("window", window),
		)
		if blockCycles+1 >= f.cfg.BlockRetryLimit {
			return pipeline.FetchResult{}, &pipeline.FetchError{Kind: pipeline.FetchErrBlocked, URL: url}
		}
	}
}

// fetchWithRetries runs the bounded attempt loop with exponential spacing.
func (f *Fetcher) fetchWithRetries(ctx context.Context, url string) (pipeline.FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < f.retry.MaxAttempts(); attempt++ {
		if attempt > 0 {
			if err := contextSleep(ctx, f.retry.Backoff(attempt-1)); err != nil {
				return pipeline.FetchResult{}, &pipeline.FetchError{Kind: pipeline.FetchErrTimeout, URL: url, Err: err}
			}
		}
		if err := f.pacer.Wait(ctx); err != nil {
			return pipeline.FetchResult{}, &pipeline.FetchError{Kind: pipeline.FetchErrTimeout, URL: url, Err: err}
		}

		callCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
		result, err := f.tr.Fetch(callCtx, url)
		cancel()
		if err == nil {
			return result, nil
		}
		// Challenge pages often arrive as HTTP errors; hand them to the
		// block detector instead of burning retry attempts.
		if result.StatusCode != 0 && f.detector.Blocked(result.StatusCode, result.Body) {
			return result, nil
		}
		lastErr = err
		if !f.retry.ShouldRetry(err, attempt+1) {
			break
		}
		f.logger.Debug("fetch attempt failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	kind := pipeline.FetchErrNetwork
	if errors.Is(lastErr, context.DeadlineExceeded) {
		kind = pipeline.FetchErrTimeout
	}
	return pipeline.FetchResult{}, &pipeline.FetchError{Kind: kind, URL: url, Err: lastErr}
}
