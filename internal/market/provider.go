// Package market hosts the bar providers the scanner fetches OHLCV history
// through, plus the retry and pacing policy applied at that boundary.
package market

import (
	"context"
	"errors"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// ErrUnavailable marks an upstream that returned nothing usable for the
// symbol this cycle. Callers treat it as skip, not failure.
var ErrUnavailable = errors.New("market data unavailable")

// Provider fetches recent bar history for one instrument. lookback and
// interval use the upstream's notation (e.g. "5d", "15m"). Implementations
// normalize shape quirks (null rows, duplicate quote blocks) before returning
// and never apply their own retry policy; retries belong to the Retrier
// wrapper.
type Provider interface {
	Bars(ctx context.Context, symbol, lookback, interval string) (*series.Series, error)
}
