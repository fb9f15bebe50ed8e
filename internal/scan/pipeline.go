package scan

import (
	"context"
	"fmt"

	"github.com/giobul/usa-midcap-scanner/internal/classify"
	"github.com/giobul/usa-midcap-scanner/internal/feature"
	"github.com/giobul/usa-midcap-scanner/internal/metrics"
	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// displacementWindow is the bar span used for price-action displacement in
// classification.
const displacementWindow = 3

// evaluate runs the full per-instrument pipeline and never panics past its
// own boundary.
func (o *Orchestrator) evaluate(ctx context.Context, symbol string, bench *series.Series) (res Result) {
	res = Result{Symbol: symbol, Tier: o.uni.Tier(symbol).String(), Outcome: OutcomeSkipped, Ts: o.now()}
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Str("symbol", symbol).Interface("panic", r).Msg("pipeline panic contained")
			res.Outcome = OutcomeError
			res.Reason = fmt.Sprintf("panic: %v", r)
			res.qualified = false
		}
	}()

	s, err := o.provider.Bars(ctx, symbol, o.settings.Lookback, o.settings.Interval)
	if err != nil {
		metrics.FetchErrors.Inc()
		o.log.Debug().Err(err).Str("symbol", symbol).Msg("bars unavailable this cycle")
		res.Reason = "data unavailable"
		return res
	}
	if s.Len() < o.settings.MinBars {
		res.Reason = fmt.Sprintf("insufficient bars (%d < %d)", s.Len(), o.settings.MinBars)
		return res
	}

	lastClose := s.Last().Close
	res.Price = lastClose

	rsi, okRSI := s.RSI(14)
	sma20, okSMA := s.SMA(20)
	rvol, okRVOL := s.RVOL(50)
	if okRSI {
		res.RSI = rsi
	}
	if okRVOL {
		res.RVOL = rvol
	}
	distSMA := 0.0
	if okSMA && sma20 > 0 {
		distSMA = (lastClose - sma20) / sma20 * 100
		res.DistSMA = distSMA
	}

	// Safe-entry protections: overheated, overextended, or unconfirmed-volume
	// setups are rejected before scoring.
	if okRSI && rsi > o.settings.MaxRSI {
		res.Reason = "protection: rsi overheated"
		return res
	}
	if okSMA && distSMA > o.settings.MaxDistSMA {
		res.Reason = "protection: overextended above sma20"
		return res
	}
	if okRVOL && rvol < o.settings.MinRVOL {
		res.Reason = "protection: relative volume too low"
		return res
	}

	vec := o.extractor.Extract(s, bench)
	comp := o.scorer.Score(vec)
	res.composite = comp
	res.Score = comp.Score
	res.Convergence = comp.Convergence

	pa := o.priceAction(s, bench)
	res.ATR = pa.ATR
	label, prob := o.classifier.Classify(vec, comp.Convergence, pa, o.uni.Tier(symbol))
	res.Label = label
	res.Probability = prob
	res.Tags = flowTags(vec, pa)

	if comp.Score < o.uni.Threshold(symbol) {
		res.Reason = "below conviction threshold"
		return res
	}

	res.qualified = true
	res.Reason = ""
	return res
}

// priceAction derives the scale-invariant shape inputs for classification.
func (o *Orchestrator) priceAction(s *series.Series, bench *series.Series) classify.PriceAction {
	pa := classify.PriceAction{Close: s.Last().Close}
	if disp, ok := s.PctChange(displacementWindow); ok {
		pa.Displacement = disp
	}
	if rvol, ok := s.RVOL(50); ok {
		pa.RVOL = rvol
	}
	if atr, ok := s.ATR(14); ok {
		pa.ATR = atr
	}
	if res, ok := s.HighestHigh(20); ok {
		pa.Resistance = res
	}
	if bench != nil {
		if bd, ok := bench.PctChange(displacementWindow); ok {
			pa.RelStrength = pa.Displacement - bd
		}
	}
	return pa
}

// flowTags reproduces the channel's flow annotations: a strong imbalance
// reads as dark-pool style positioning, extreme relative volume as a whale
// sweep.
func flowTags(vec feature.Vector, pa classify.PriceAction) []string {
	var tags []string
	if vec.Get(feature.KeyOrderImbalance) > 75 {
		tags = append(tags, "DARK POOL")
	}
	if pa.RVOL > 2.0 {
		tags = append(tags, "WHALE SWEEP")
	}
	return tags
}
