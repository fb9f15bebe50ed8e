package market

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// Retrier wraps a Provider with the scanner's single retry-with-backoff
// policy, so individual call sites never grow their own sleep loops. After
// the attempt budget is exhausted the last error is returned and the
// instrument is abandoned for the cycle.
type Retrier struct {
	inner    Provider
	attempts int
	base     time.Duration
	log      zerolog.Logger
}

// NewRetrier builds the wrapper. Non-positive knobs fall back to 3 attempts
// with a 500ms base delay; the delay doubles between attempts.
func NewRetrier(inner Provider, attempts int, base time.Duration, log zerolog.Logger) *Retrier {
	if attempts <= 0 {
		attempts = 3
	}
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return &Retrier{inner: inner, attempts: attempts, base: base, log: log}
}

// Bars fetches with exponential backoff between attempts. Context
// cancellation is terminal and never retried.
func (r *Retrier) Bars(ctx context.Context, symbol, lookback, interval string) (*series.Series, error) {
	var lastErr error
	delay := r.base
	for attempt := 1; attempt <= r.attempts; attempt++ {
		s, err := r.inner.Bars(ctx, symbol, lookback, interval)
		if err == nil {
			return s, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == r.attempts {
			break
		}
		r.log.Debug().Err(err).Str("symbol", symbol).Int("attempt", attempt).Msg("fetch failed, backing off")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}
	return nil, lastErr
}
