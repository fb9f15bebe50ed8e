// Package score fuses a sub-score vector into a single conviction score with
// a convergence bonus. Scoring is deterministic: the weighted sum is
// accumulated in sorted key order so repeated invocations are bit-identical.
package score

import (
	"fmt"
	"math"

	"github.com/giobul/usa-midcap-scanner/internal/feature"
)

// Weights maps feature keys to their share of the composite score.
type Weights map[feature.Key]float64

// Validate checks the weights sum to 1.0 within floating-point tolerance.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("empty weights")
	}
	var sum float64
	for k, v := range w {
		if v < 0 {
			return fmt.Errorf("weight %s is negative", k)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights sum to %.6f, want 1.0", sum)
	}
	return nil
}

// DefaultFullWeights is the canonical seven-factor weighting.
func DefaultFullWeights() Weights {
	return Weights{
		feature.KeyVolumeFractal:            0.22,
		feature.KeyPriceHarmonic:            0.12,
		feature.KeyOrderImbalance:           0.18,
		feature.KeyVolatilityRegime:         0.10,
		feature.KeyMomentumQuality:          0.14,
		feature.KeyInstitutionalCorrelation: 0.12,
		feature.KeyLiquidityAbsorption:      0.12,
	}
}

// DefaultLiteWeights is the historical three-factor weighting.
func DefaultLiteWeights() Weights {
	return Weights{
		feature.KeyVolumeFractal:    0.4,
		feature.KeyOrderImbalance:   0.4,
		feature.KeyFlowConfirmation: 0.2,
	}
}

// DefaultMinConvergence returns the convergence floor for a profile: the lite
// profile only produces three sub-scores, so demanding four aligned factors
// would make the bonus unreachable.
func DefaultMinConvergence(profile string) int {
	if profile == "lite" {
		return 2
	}
	return 4
}

// Composite is the fused result for one instrument.
type Composite struct {
	Score       float64
	Convergence int
	SubScores   feature.Vector
}

// Scorer combines sub-scores using fixed weights plus a convergence bonus.
type Scorer struct {
	weights        Weights
	highThreshold  float64
	minConvergence int
	bonusPerUnit   float64
}

// New validates the weights and builds a scorer. Non-positive knobs fall back
// to the canonical constants (high threshold 70, min convergence 4, bonus 2).
func New(weights Weights, highThreshold float64, minConvergence int, bonusPerUnit float64) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("scorer weights: %w", err)
	}
	if highThreshold <= 0 {
		highThreshold = 70
	}
	if minConvergence <= 0 {
		minConvergence = 4
	}
	if bonusPerUnit <= 0 {
		bonusPerUnit = 2
	}
	return &Scorer{
		weights:        weights,
		highThreshold:  highThreshold,
		minConvergence: minConvergence,
		bonusPerUnit:   bonusPerUnit,
	}, nil
}

// Weights exposes the active weighting for logging and formatting.
func (s *Scorer) Weights() Weights { return s.weights }

// HighThreshold exposes the convergence cut-off.
func (s *Scorer) HighThreshold() float64 { return s.highThreshold }

// Score fuses the vector. Convergence counts sub-scores above the high
// threshold; when it reaches the minimum, bonusPerUnit*convergence is added
// before the final clamp to [0,100].
func (s *Scorer) Score(vec feature.Vector) Composite {
	var weighted float64
	convergence := 0
	for _, k := range vec.Keys() {
		v := vec.Get(k)
		weighted += s.weights[k] * v
		if v > s.highThreshold {
			convergence++
		}
	}
	if convergence >= s.minConvergence {
		weighted += s.bonusPerUnit * float64(convergence)
	}
	return Composite{
		Score:       feature.Clamp(weighted),
		Convergence: convergence,
		SubScores:   vec,
	}
}
