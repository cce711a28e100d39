package sponsor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/listenupapp/chapter-timeline/internal/logger"
	"github.com/listenupapp/chapter-timeline/internal/ratelimit"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// GuardConfig tunes a Guarded source.
type GuardConfig struct {
	Timeout         time.Duration // Per attempt
	MaxRetries      int           // Retries after the first attempt
	RPS             float64       // Lookups per second per video
	Burst           int
	InitialInterval time.Duration // First retry delay (default: 500ms)
	MaxInterval     time.Duration // Longest retry delay (default: 5s)
}

// Guarded wraps a Source with a per-attempt timeout, per-video rate limiting
// and exponential-backoff retries. ErrNoData is returned as is and never
// retried; other failures surface as ErrUnavailable. A cancelled context is
// returned unwrapped.
type Guarded struct {
	source  Source
	cfg     GuardConfig
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewGuarded creates a guarded source. Call Stop to release the limiter.
func NewGuarded(source Source, cfg GuardConfig, log *slog.Logger) *Guarded {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Guarded{
		source:  source,
		cfg:     cfg,
		limiter: ratelimit.New(cfg.RPS, cfg.Burst),
		logger:  log,
	}
}

// Segments implements Source.
func (g *Guarded) Segments(ctx context.Context, videoID string) ([]timeline.Interval, error) {
	if err := g.limiter.Wait(ctx, videoID); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var intervals []timeline.Interval
	attempt := 0
	fetch := func() error {
		attempt++
		attemptCtx := ctx
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}

		result, err := g.source.Segments(attemptCtx, videoID)
		if err != nil {
			if errors.Is(err, ErrNoData) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		intervals = result
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.cfg.InitialInterval
	bo.MaxInterval = g.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(max(g.cfg.MaxRetries, 0))), ctx)
	notify := func(err error, wait time.Duration) {
		g.logger.Warn("sponsor lookup failed, retrying",
			"video_id", videoID,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(fetch, policy, notify); err != nil {
		switch {
		case errors.Is(err, ErrNoData):
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			g.logger.Error("sponsor lookup gave up", "video_id", videoID, "attempts", attempt, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}

	return intervals, nil
}

// Stop releases the rate limiter.
func (g *Guarded) Stop() {
	g.limiter.Stop()
}
