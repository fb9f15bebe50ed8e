package score

import (
	"math"
	"testing"

	"github.com/giobul/usa-midcap-scanner/internal/feature"
)

func uniformWeights() Weights {
	keys := []feature.Key{
		feature.KeyVolumeFractal,
		feature.KeyPriceHarmonic,
		feature.KeyOrderImbalance,
		feature.KeyVolatilityRegime,
		feature.KeyMomentumQuality,
		feature.KeyInstitutionalCorrelation,
		feature.KeyLiquidityAbsorption,
	}
	w := make(Weights, len(keys))
	for _, k := range keys {
		w[k] = 1.0 / float64(len(keys))
	}
	return w
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultFullWeights().Validate(); err != nil {
		t.Fatalf("full weights invalid: %v", err)
	}
	if err := DefaultLiteWeights().Validate(); err != nil {
		t.Fatalf("lite weights invalid: %v", err)
	}
	bad := Weights{feature.KeyVolumeFractal: 0.5}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for weights not summing to 1")
	}
}

func TestConvergenceBonus(t *testing.T) {
	scorer, err := New(uniformWeights(), 70, 4, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vec := feature.Vector{
		feature.KeyVolumeFractal:            80,
		feature.KeyPriceHarmonic:            80,
		feature.KeyOrderImbalance:           80,
		feature.KeyVolatilityRegime:         80,
		feature.KeyMomentumQuality:          80,
		feature.KeyInstitutionalCorrelation: 0,
		feature.KeyLiquidityAbsorption:      0,
	}
	comp := scorer.Score(vec)
	if comp.Convergence != 5 {
		t.Fatalf("convergence = %d, want 5", comp.Convergence)
	}
	// weighted mean 400/7 plus the 2*5 bonus
	want := 400.0/7.0 + 10
	if math.Abs(comp.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", comp.Score, want)
	}
}

func TestNoBonusBelowMinConvergence(t *testing.T) {
	scorer, err := New(uniformWeights(), 70, 4, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vec := feature.Vector{
		feature.KeyVolumeFractal:            80,
		feature.KeyPriceHarmonic:            80,
		feature.KeyOrderImbalance:           80,
		feature.KeyVolatilityRegime:         0,
		feature.KeyMomentumQuality:          0,
		feature.KeyInstitutionalCorrelation: 0,
		feature.KeyLiquidityAbsorption:      0,
	}
	comp := scorer.Score(vec)
	if comp.Convergence != 3 {
		t.Fatalf("convergence = %d, want 3", comp.Convergence)
	}
	want := 240.0 / 7.0
	if math.Abs(comp.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v (no bonus)", comp.Score, want)
	}
}

func TestDefaultMinConvergenceByProfile(t *testing.T) {
	if got := DefaultMinConvergence("lite"); got != 2 {
		t.Fatalf("lite min convergence = %d, want 2", got)
	}
	if got := DefaultMinConvergence("full"); got != 4 {
		t.Fatalf("full min convergence = %d, want 4", got)
	}
}

func TestLiteProfileBonusReachable(t *testing.T) {
	scorer, err := New(DefaultLiteWeights(), 70, DefaultMinConvergence("lite"), 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vec := feature.Vector{
		feature.KeyVolumeFractal:    80,
		feature.KeyOrderImbalance:   80,
		feature.KeyFlowConfirmation: 80,
	}
	comp := scorer.Score(vec)
	if comp.Convergence != 3 {
		t.Fatalf("convergence = %d, want 3", comp.Convergence)
	}
	// all three factors aligned: 80 weighted mean plus the 2*3 bonus
	if math.Abs(comp.Score-86) > 1e-9 {
		t.Fatalf("score = %v, want 86 (bonus must be reachable on three sub-scores)", comp.Score)
	}
}

func TestScoreClampedTo100(t *testing.T) {
	scorer, err := New(uniformWeights(), 70, 4, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vec := make(feature.Vector, 7)
	for k := range uniformWeights() {
		vec[k] = 100
	}
	comp := scorer.Score(vec)
	if comp.Score != 100 {
		t.Fatalf("score = %v, want clamp to 100", comp.Score)
	}
	if comp.Convergence != 7 {
		t.Fatalf("convergence = %d, want 7", comp.Convergence)
	}
}

func TestScoreDeterministic(t *testing.T) {
	scorer, err := New(DefaultFullWeights(), 70, 4, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vec := feature.Vector{
		feature.KeyVolumeFractal:            73.25,
		feature.KeyPriceHarmonic:            12.5,
		feature.KeyOrderImbalance:           91.125,
		feature.KeyVolatilityRegime:         44.0,
		feature.KeyMomentumQuality:          67.875,
		feature.KeyInstitutionalCorrelation: 55.5,
		feature.KeyLiquidityAbsorption:      80.0,
	}
	first := scorer.Score(vec)
	for i := 0; i < 50; i++ {
		if got := scorer.Score(vec); got.Score != first.Score || got.Convergence != first.Convergence {
			t.Fatalf("non-deterministic score on run %d: %v vs %v", i, got, first)
		}
	}
}
