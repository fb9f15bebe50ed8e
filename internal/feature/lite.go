package feature

import (
	"math"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// Lite is the historical three-factor profile: volume expansion, displacement
// imbalance, and a last-bar direction check. Kept interchangeable with Full
// behind the Extractor interface rather than as a parallel fork.
type Lite struct {
	volWindow int
	smaPeriod int
}

// NewLite builds the lite profile.
func NewLite() *Lite {
	return &Lite{volWindow: 5, smaPeriod: 20}
}

// Name identifies the profile for logging and config.
func (l *Lite) Name() string { return "lite" }

// Keys lists the profile's sub-scores.
func (l *Lite) Keys() []Key {
	return []Key{KeyVolumeFractal, KeyOrderImbalance, KeyFlowConfirmation}
}

// Extract computes the three lite sub-scores; the benchmark series is unused.
func (l *Lite) Extract(s *series.Series, _ *series.Series) Vector {
	vec := make(Vector, 3)
	for _, k := range l.Keys() {
		vec[k] = Neutral(k)
	}
	if s == nil || s.Len() == 0 {
		return vec
	}

	// Volume expansion against the whole-series mean.
	recent, ok1 := s.VolumeMean(l.volWindow)
	base, ok2 := s.VolumeMean(s.Len())
	if ok1 && ok2 && base > 0 {
		vec.Set(KeyVolumeFractal, recent/base*70)
	}

	// Displacement from the 20-bar mean, scale-invariant.
	if sma, ok := s.SMA(l.smaPeriod); ok && sma > 0 {
		vec.Set(KeyOrderImbalance, math.Abs(s.Last().Close-sma)/sma*2000)
	}

	// Last-bar direction: 90 on an up close, 30 on a down close.
	if chg, ok := s.PctChange(1); ok {
		if chg > 0 {
			vec.Set(KeyFlowConfirmation, 90)
		} else {
			vec.Set(KeyFlowConfirmation, 30)
		}
	}
	return vec
}
