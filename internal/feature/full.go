package feature

import (
	"math"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// Full is the seven-factor flow profile. Every factor normalizes against the
// instrument's own rolling baselines, so the same extractor works across
// very different liquidity regimes.
type Full struct {
	volWindow    int
	volBaseline  int
	smaPeriod    int
	retWindow    int
	momWindow    int
	atrShort     int
	atrLong      int
	corrWindow   int
	absorbWindow int
}

// NewFull builds the full profile with its canonical windows.
func NewFull() *Full {
	return &Full{
		volWindow:    5,
		volBaseline:  50,
		smaPeriod:    20,
		retWindow:    20,
		momWindow:    10,
		atrShort:     5,
		atrLong:      20,
		corrWindow:   20,
		absorbWindow: 3,
	}
}

// Name identifies the profile for logging and config.
func (f *Full) Name() string { return "full" }

// Keys lists the profile's sub-scores.
func (f *Full) Keys() []Key {
	return []Key{
		KeyVolumeFractal,
		KeyPriceHarmonic,
		KeyOrderImbalance,
		KeyVolatilityRegime,
		KeyMomentumQuality,
		KeyInstitutionalCorrelation,
		KeyLiquidityAbsorption,
	}
}

// Extract computes all seven sub-scores. bench may be nil; correlation then
// degrades to its neutral default.
func (f *Full) Extract(s *series.Series, bench *series.Series) Vector {
	vec := make(Vector, 7)
	for _, k := range f.Keys() {
		vec[k] = Neutral(k)
	}
	if s == nil || s.Len() == 0 {
		return vec
	}
	vec.Set(KeyVolumeFractal, f.volumeFractal(s))
	vec.Set(KeyPriceHarmonic, f.priceHarmonic(s))
	vec.Set(KeyOrderImbalance, f.orderImbalance(s))
	vec.Set(KeyVolatilityRegime, f.volatilityRegime(s))
	vec.Set(KeyMomentumQuality, f.momentumQuality(s))
	vec.Set(KeyInstitutionalCorrelation, f.institutionalCorrelation(s, bench))
	vec.Set(KeyLiquidityAbsorption, f.liquidityAbsorption(s))
	return vec
}

// volumeFractal scores recent volume expansion: mean of the last volWindow
// volumes over the rolling baseline mean, scaled so 1.4x baseline lands near
// the alertable band.
func (f *Full) volumeFractal(s *series.Series) float64 {
	baseline := f.volBaseline
	if s.Len() < baseline {
		baseline = s.Len()
	}
	recent, ok1 := s.VolumeMean(f.volWindow)
	base, ok2 := s.VolumeMean(baseline)
	if !ok1 || !ok2 || base <= 0 {
		return Neutral(KeyVolumeFractal)
	}
	return recent / base * 70
}

// priceHarmonic rewards quiet, orderly price action: low standard deviation
// of relative returns maps to a high score. Scale-invariant by construction.
func (f *Full) priceHarmonic(s *series.Series) float64 {
	std, ok := s.ReturnStd(f.retWindow)
	if !ok {
		return Neutral(KeyPriceHarmonic)
	}
	return 100 * (1 - math.Min(1, std/0.02))
}

// orderImbalance proxies one-sided flow through displacement of the last
// close from the 20-bar mean, in relative terms.
func (f *Full) orderImbalance(s *series.Series) float64 {
	sma, ok := s.SMA(f.smaPeriod)
	if !ok || sma <= 0 {
		return Neutral(KeyOrderImbalance)
	}
	return math.Abs(s.Last().Close-sma) / sma * 2000
}

// volatilityRegime scores contraction of short-window ATR against the longer
// baseline; a coiled regime (ratio well below 1) scores high.
func (f *Full) volatilityRegime(s *series.Series) float64 {
	short, ok1 := s.ATR(f.atrShort)
	long, ok2 := s.ATR(f.atrLong)
	if !ok1 || !ok2 || long <= 0 {
		return Neutral(KeyVolatilityRegime)
	}
	return (2 - short/long) * 50
}

// momentumQuality is the efficiency ratio of the last momWindow returns: net
// move over gross move, mapped to [0,100]. Choppy series land near 0, clean
// one-directional series near 100.
func (f *Full) momentumQuality(s *series.Series) float64 {
	rets, ok := s.Returns(f.momWindow)
	if !ok {
		return Neutral(KeyMomentumQuality)
	}
	var net, gross float64
	for _, r := range rets {
		net += r
		gross += math.Abs(r)
	}
	if gross <= 0 {
		return Neutral(KeyMomentumQuality)
	}
	return math.Abs(net) / gross * 100
}

// institutionalCorrelation maps the Pearson correlation of instrument returns
// against benchmark returns from [-1,1] onto [0,100].
func (f *Full) institutionalCorrelation(s *series.Series, bench *series.Series) float64 {
	if bench == nil {
		return Neutral(KeyInstitutionalCorrelation)
	}
	a, ok1 := s.Returns(f.corrWindow)
	b, ok2 := bench.Returns(f.corrWindow)
	if !ok1 || !ok2 {
		return Neutral(KeyInstitutionalCorrelation)
	}
	corr, ok := pearson(a, b)
	if !ok {
		return Neutral(KeyInstitutionalCorrelation)
	}
	return (corr + 1) * 50
}

// liquidityAbsorption looks for heavy volume compressed into narrow ranges
// over the last few bars: volume ratio scaled down by how wide each bar's
// range is relative to ATR.
func (f *Full) liquidityAbsorption(s *series.Series) float64 {
	base, ok1 := s.VolumeMean(f.smaPeriod)
	atr, ok2 := s.ATR(f.atrLong)
	if !ok1 || !ok2 || base <= 0 || atr <= 0 || s.Len() < f.absorbWindow {
		return Neutral(KeyLiquidityAbsorption)
	}
	var sum float64
	for i := s.Len() - f.absorbWindow; i < s.Len(); i++ {
		b := s.Bar(i)
		vr := b.Volume / base
		rng := b.High - b.Low
		sum += vr * atr / (rng + atr)
	}
	return sum / float64(f.absorbWindow) * 25
}

func pearson(a, b []float64) (float64, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0, false
	}
	a = a[len(a)-n:]
	b = b[len(b)-n:]
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA <= 0 || varB <= 0 {
		return 0, false
	}
	corr := cov / math.Sqrt(varA*varB)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0, false
	}
	return corr, true
}
