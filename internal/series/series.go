// Package series holds the immutable OHLCV bar history consumed by the
// feature extractors. A Series is built once per scan cycle from freshly
// fetched bars and never mutated afterwards.
package series

import (
	"fmt"
	"time"
)

// Bar is a single OHLCV sample for a fixed interval.
type Bar struct {
	Ts     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Valid reports whether the bar satisfies basic OHLCV sanity
// (low <= open/close <= high, non-negative volume, positive prices).
func (b Bar) Valid() bool {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return false
	}
	if b.Volume < 0 {
		return false
	}
	if b.Low > b.Open || b.Low > b.Close {
		return false
	}
	if b.High < b.Open || b.High < b.Close {
		return false
	}
	return true
}

// Series is an ordered bar history for one instrument.
type Series struct {
	symbol string
	bars   []Bar
}

// New validates and wraps a bar slice. Invalid bars are dropped rather than
// rejected wholesale (upstream providers occasionally emit null rows); an
// error is returned only when timestamps are not strictly increasing.
func New(symbol string, bars []Bar) (*Series, error) {
	clean := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Valid() {
			continue
		}
		if len(clean) > 0 && !b.Ts.After(clean[len(clean)-1].Ts) {
			return nil, fmt.Errorf("series %s: timestamps not strictly increasing at %s", symbol, b.Ts)
		}
		clean = append(clean, b)
	}
	return &Series{symbol: symbol, bars: clean}, nil
}

// Symbol returns the instrument identifier the series belongs to.
func (s *Series) Symbol() string { return s.symbol }

// Len returns the number of valid bars.
func (s *Series) Len() int { return len(s.bars) }

// Bar returns the bar at index i (0 = oldest).
func (s *Series) Bar(i int) Bar { return s.bars[i] }

// Last returns the most recent bar; the zero Bar when the series is empty.
func (s *Series) Last() Bar {
	if len(s.bars) == 0 {
		return Bar{}
	}
	return s.bars[len(s.bars)-1]
}

// Bars returns a copy of the underlying bars, oldest first.
func (s *Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}
