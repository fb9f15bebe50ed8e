// Package classify assigns a discrete signal label to a scored instrument
// from its sub-score pattern and price-action shape.
package classify

import (
	"math"

	"github.com/giobul/usa-midcap-scanner/internal/feature"
	"github.com/giobul/usa-midcap-scanner/internal/universe"
)

// Label is the discrete signal category.
type Label string

const (
	// LabelNone means no threshold cleared.
	LabelNone Label = "NONE"
	// LabelAccumulation is heavy volume with near-zero price displacement.
	LabelAccumulation Label = "ACCUMULATION"
	// LabelSweep is heavy volume with an upward displacement.
	LabelSweep Label = "SWEEP"
	// LabelDistribution is heavy volume with adverse displacement; priority
	// tier only.
	LabelDistribution Label = "DISTRIBUTION"
	// LabelExitWarning is relative-strength divergence against the
	// benchmark; priority tier only.
	LabelExitWarning Label = "EXIT_WARNING"
)

// PriceAction carries the shape inputs the rules need, all scale-invariant.
type PriceAction struct {
	// Displacement is the relative close change over the classification
	// window.
	Displacement float64
	// RVOL is the latest bar's volume over its rolling baseline.
	RVOL float64
	// Close, Resistance and ATR feed the distance-to-target term of the
	// probability estimate.
	Close      float64
	Resistance float64
	ATR        float64
	// RelStrength is instrument displacement minus benchmark displacement;
	// zero when no benchmark was available.
	RelStrength float64
}

// Classifier evaluates the rule set in a fixed priority order so exactly one
// label is produced.
type Classifier struct {
	volumeHigh float64
	flatMove   float64
	sweepMove  float64
	divergence float64
}

// NewClassifier builds a classifier with the canonical cut-offs: volume
// sub-score 70, flat displacement 0.1%, sweep displacement 0.75%,
// relative-strength divergence -2%.
func NewClassifier() *Classifier {
	return &Classifier{
		volumeHigh: 70,
		flatMove:   0.001,
		sweepMove:  0.0075,
		divergence: -0.02,
	}
}

// Classify returns the label and a probability estimate in [0,100].
//
// Rule priority, highest first: SWEEP, ACCUMULATION, DISTRIBUTION,
// EXIT_WARNING, NONE. When both the SWEEP and ACCUMULATION conditions hold,
// SWEEP wins: directional evidence outranks static accumulation evidence.
// SWEEP requires upward displacement; a heavy sell-off falls through to the
// DISTRIBUTION arm. DISTRIBUTION and EXIT_WARNING apply only to priority-tier
// instruments.
func (c *Classifier) Classify(vec feature.Vector, convergence int, pa PriceAction, tier universe.Tier) (Label, float64) {
	prob := c.probability(convergence, pa)
	heavy := c.heavyVolume(vec, pa)

	switch {
	case heavy && pa.Displacement >= c.sweepMove:
		return LabelSweep, prob
	case heavy && math.Abs(pa.Displacement) <= c.flatMove:
		return LabelAccumulation, prob
	case tier == universe.TierPriority && heavy && pa.Displacement < -c.flatMove:
		return LabelDistribution, prob
	case tier == universe.TierPriority && pa.RelStrength <= c.divergence:
		return LabelExitWarning, prob
	default:
		return LabelNone, prob
	}
}

// heavyVolume is the shared volume-evidence predicate: a high volume-derived
// sub-score, or raw relative volume at least 2x baseline.
func (c *Classifier) heavyVolume(vec feature.Vector, pa PriceAction) bool {
	if vec.Get(feature.KeyVolumeFractal) >= c.volumeHigh {
		return true
	}
	if vec.Get(feature.KeyLiquidityAbsorption) >= c.volumeHigh {
		return true
	}
	return pa.RVOL >= 2
}

// probability grows with convergence and with proximity to the resistance
// target, measured in ATR units. It is never constant: each convergence unit
// adds 9 points and the proximity term contributes up to 20.
func (c *Classifier) probability(convergence int, pa PriceAction) float64 {
	p := 35 + 9*float64(convergence)
	if pa.ATR > 0 && pa.Resistance > pa.Close {
		dist := (pa.Resistance - pa.Close) / pa.ATR
		p += 20 / (1 + dist)
	} else if pa.Resistance > 0 && pa.Close >= pa.Resistance {
		// Already at or through the target.
		p += 20
	}
	return feature.Clamp(p)
}
