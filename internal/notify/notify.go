// Package notify delivers formatted alert payloads to the configured
// channel. Delivery is best-effort: failures are reported to the caller for
// logging but never retried here, because the alert cooldown already
// prevents duplicate spam on the next cycle.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notifier sends one pre-formatted text payload per alert.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Console logs payloads instead of sending them; the fallback when no
// channel is configured.
type Console struct {
	log zerolog.Logger
}

// NewConsole builds the logging notifier.
func NewConsole(log zerolog.Logger) *Console {
	return &Console{log: log}
}

// Send logs the payload at info level.
func (c *Console) Send(_ context.Context, text string) error {
	c.log.Info().Str("payload", text).Msg("alert")
	return nil
}

// Paced wraps a notifier with a minimum gap between consecutive sends,
// independent of the scan worker pool, to respect the channel's own
// throughput limit.
type Paced struct {
	inner Notifier
	gap   time.Duration
	mu    sync.Mutex
	last  time.Time
}

// NewPaced builds the pacing wrapper; a non-positive gap disables pacing.
func NewPaced(inner Notifier, gap time.Duration) *Paced {
	return &Paced{inner: inner, gap: gap}
}

// Send waits out the remaining gap since the previous send, then delegates.
func (p *Paced) Send(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gap > 0 && !p.last.IsZero() {
		if wait := p.gap - time.Since(p.last); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	err := p.inner.Send(ctx, text)
	p.last = time.Now()
	return err
}

// Build returns a Telegram notifier when credentials are present, the
// console notifier otherwise.
func Build(mode, token, chatID string, log zerolog.Logger) Notifier {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "telegram":
		if token != "" && chatID != "" {
			return NewTelegram(token, chatID)
		}
		return NewConsole(log)
	default:
		return NewConsole(log)
	}
}
