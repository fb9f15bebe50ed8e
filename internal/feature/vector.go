// Package feature turns a bar series into a fixed vector of normalized
// sub-scores in [0,100]. Extractors are pure: no I/O, no shared state, and a
// numeric edge case always degrades to the feature's documented neutral
// default instead of an error.
package feature

import "sort"

// Key names one sub-score in a vector.
type Key string

const (
	// KeyVolumeFractal measures recent volume expansion against the series
	// baseline. Neutral default 0 (no evidence of expansion).
	KeyVolumeFractal Key = "volume_fractal"
	// KeyPriceHarmonic measures price stability around its moving average.
	// Neutral default 50.
	KeyPriceHarmonic Key = "price_harmonic"
	// KeyOrderImbalance proxies directional order flow via displacement from
	// the 20-bar mean. Neutral default 0.
	KeyOrderImbalance Key = "order_imbalance"
	// KeyVolatilityRegime rewards volatility contraction (short ATR below the
	// longer baseline). Neutral default 50.
	KeyVolatilityRegime Key = "volatility_regime"
	// KeyMomentumQuality measures how one-sided recent closes are. Neutral
	// default 50.
	KeyMomentumQuality Key = "momentum_quality"
	// KeyInstitutionalCorrelation is return correlation against the
	// benchmark. Neutral default 50 (benchmark unavailable or degenerate).
	KeyInstitutionalCorrelation Key = "institutional_correlation"
	// KeyLiquidityAbsorption detects heavy volume absorbed into narrow
	// ranges. Neutral default 0.
	KeyLiquidityAbsorption Key = "liquidity_absorption"
	// KeyFlowConfirmation is the lite profile's last-bar direction check.
	// Neutral default 50.
	KeyFlowConfirmation Key = "flow_confirmation"
)

var neutral = map[Key]float64{
	KeyVolumeFractal:            0,
	KeyPriceHarmonic:            50,
	KeyOrderImbalance:           0,
	KeyVolatilityRegime:         50,
	KeyMomentumQuality:          50,
	KeyInstitutionalCorrelation: 50,
	KeyLiquidityAbsorption:      0,
	KeyFlowConfirmation:         50,
}

// Neutral returns the documented fallback value for a key.
func Neutral(k Key) float64 { return neutral[k] }

// Vector maps feature keys to clamped sub-scores.
type Vector map[Key]float64

// Get returns the sub-score, or the key's neutral default when absent.
func (v Vector) Get(k Key) float64 {
	if val, ok := v[k]; ok {
		return val
	}
	return Neutral(k)
}

// Set stores a clamped sub-score.
func (v Vector) Set(k Key, val float64) {
	v[k] = Clamp(val)
}

// Keys returns the vector's keys in sorted order, so iteration (and the
// floating-point sums built from it) is deterministic.
func (v Vector) Keys() []Key {
	keys := make([]Key, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clamp bounds a sub-score to [0,100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
