package market

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// ProviderYahoo fetches history from the Yahoo Finance chart API.
	ProviderYahoo = "yahoo"
	// ProviderBinance aggregates live klines from Binance websockets.
	ProviderBinance = "binance"
	// ProviderStub serves deterministic synthetic bars (tests/offline).
	ProviderStub = "stub"
)

// Build returns the provider matching the configured name, plus a background
// runner when the provider needs one (nil otherwise). Unknown names fall back
// to Yahoo.
func Build(name string, symbols []string, interval string, ratePerSec float64, log zerolog.Logger) (Provider, func(context.Context) error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderStub:
		return NewStub(), nil
	case ProviderBinance:
		stream := NewStream(log, symbols, interval, 200)
		return stream, stream.Run
	default:
		return NewYahoo(WithRateLimit(ratePerSec)), nil
	}
}
