package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RetryConfig bounds send retries inside a single tick.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry schedule.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		RetryDelays: []time.Duration{time.Second, 5 * time.Second},
	}
}

// RateLimitedNotifier wraps a Notifier with a token-bucket rate limit and
// short in-tick retries. Exhausted retries surface as a transport error;
// the engine then leaves the record's due state unchanged so the next
// tick retries the whole step.
type RateLimitedNotifier struct {
	next    Notifier
	limiter *rate.Limiter
	retry   RetryConfig
	logger  *zerolog.Logger
}

// NewRateLimitedNotifier wraps next. perSecond and burst follow Telegram's
// broadcast guidance (well under 30 msg/s).
func NewRateLimitedNotifier(next Notifier, perSecond float64, burst int, retry RetryConfig, logger *zerolog.Logger) *RateLimitedNotifier {
	if perSecond <= 0 {
		perSecond = 20
	}
	if burst <= 0 {
		burst = 30
	}
	if retry.MaxRetries < 0 {
		retry = DefaultRetryConfig()
	}
	return &RateLimitedNotifier{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		retry:   retry,
		logger:  logger,
	}
}

// SendNotice delivers the notice, retrying transient failures.
func (n *RateLimitedNotifier) SendNotice(ctx context.Context, owner int64, label string, controls Controls) (int, error) {
	var lastErr error
	for attempt := 0; attempt <= n.retry.MaxRetries; attempt++ {
		if err := n.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limiter: %w", err)
		}

		id, err := n.next.SendNotice(ctx, owner, label, controls)
		if err == nil {
			return id, nil
		}
		lastErr = err

		if attempt < n.retry.MaxRetries {
			delay := time.Second
			if attempt < len(n.retry.RetryDelays) {
				delay = n.retry.RetryDelays[attempt]
			}
			n.logger.Info().Err(err).
				Int64("owner", owner).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("retrying notice send")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}
	return 0, fmt.Errorf("send notice after %d attempts: %w", n.retry.MaxRetries+1, lastErr)
}

// DeleteNotice is rate limited but never retried: deletions are
// best-effort by contract.
func (n *RateLimitedNotifier) DeleteNotice(ctx context.Context, owner int64, noticeID int) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return n.next.DeleteNotice(ctx, owner, noticeID)
}
