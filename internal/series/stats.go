package series

import "math"

// Rolling statistics over the bar history. Every helper returns (value, ok);
// ok is false when the window cannot be filled or the result would not be a
// finite number, so callers never see NaN or Inf.

// SMA returns the simple moving average of the last period closes.
func (s *Series) SMA(period int) (float64, bool) {
	if period <= 0 || len(s.bars) < period {
		return 0, false
	}
	var sum float64
	for _, b := range s.bars[len(s.bars)-period:] {
		sum += b.Close
	}
	return finite(sum / float64(period))
}

// VolumeMean returns the mean volume over the last period bars.
func (s *Series) VolumeMean(period int) (float64, bool) {
	if period <= 0 || len(s.bars) < period {
		return 0, false
	}
	var sum float64
	for _, b := range s.bars[len(s.bars)-period:] {
		sum += b.Volume
	}
	return finite(sum / float64(period))
}

// RVOL is the relative volume of the latest bar against the rolling mean of
// the preceding baseline bars.
func (s *Series) RVOL(baseline int) (float64, bool) {
	if baseline <= 0 || len(s.bars) < baseline+1 {
		return 0, false
	}
	var sum float64
	for _, b := range s.bars[len(s.bars)-baseline-1 : len(s.bars)-1] {
		sum += b.Volume
	}
	mean := sum / float64(baseline)
	if mean <= 0 {
		return 0, false
	}
	return finite(s.Last().Volume / mean)
}

// RSI computes the Wilder relative strength index over the last period deltas
// using the rolling-mean formulation.
func (s *Series) RSI(period int) (float64, bool) {
	if period <= 0 || len(s.bars) < period+1 {
		return 0, false
	}
	var gain, loss float64
	start := len(s.bars) - period
	for i := start; i < len(s.bars); i++ {
		delta := s.bars[i].Close - s.bars[i-1].Close
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)
	rs := gain / (loss + 1e-9)
	return finite(100 - 100/(1+rs))
}

// ATR is the mean true range over the last period bars.
func (s *Series) ATR(period int) (float64, bool) {
	if period <= 0 || len(s.bars) < period+1 {
		return 0, false
	}
	var sum float64
	start := len(s.bars) - period
	for i := start; i < len(s.bars); i++ {
		sum += trueRange(s.bars[i], s.bars[i-1])
	}
	return finite(sum / float64(period))
}

// VWAP is the volume-weighted average of typical prices over the last period
// bars.
func (s *Series) VWAP(period int) (float64, bool) {
	if period <= 0 || len(s.bars) < period {
		return 0, false
	}
	var pv, vol float64
	for _, b := range s.bars[len(s.bars)-period:] {
		typical := (b.High + b.Low + b.Close) / 3
		pv += typical * b.Volume
		vol += b.Volume
	}
	if vol <= 0 {
		return 0, false
	}
	return finite(pv / vol)
}

// PctChange is the relative close-to-close change over the last n bars.
func (s *Series) PctChange(n int) (float64, bool) {
	if n <= 0 || len(s.bars) < n+1 {
		return 0, false
	}
	anchor := s.bars[len(s.bars)-n-1].Close
	if anchor <= 0 {
		return 0, false
	}
	return finite((s.Last().Close - anchor) / anchor)
}

// Returns yields the close-to-close relative returns of the last n intervals.
func (s *Series) Returns(n int) ([]float64, bool) {
	if n <= 0 || len(s.bars) < n+1 {
		return nil, false
	}
	out := make([]float64, 0, n)
	start := len(s.bars) - n
	for i := start; i < len(s.bars); i++ {
		prev := s.bars[i-1].Close
		if prev <= 0 {
			return nil, false
		}
		r := (s.bars[i].Close - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, false
		}
		out = append(out, r)
	}
	return out, true
}

// ReturnStd is the standard deviation of the last n relative returns.
func (s *Series) ReturnStd(n int) (float64, bool) {
	rets, ok := s.Returns(n)
	if !ok || len(rets) < 2 {
		return 0, false
	}
	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	var ss float64
	for _, r := range rets {
		ss += (r - mean) * (r - mean)
	}
	return finite(math.Sqrt(ss / float64(len(rets))))
}

// HighestHigh returns the maximum high over the last period bars, used as a
// crude resistance level.
func (s *Series) HighestHigh(period int) (float64, bool) {
	if period <= 0 || len(s.bars) < period {
		return 0, false
	}
	max := 0.0
	for _, b := range s.bars[len(s.bars)-period:] {
		if b.High > max {
			max = b.High
		}
	}
	return finite(max)
}

func trueRange(cur, prev Bar) float64 {
	tr := cur.High - cur.Low
	if d := math.Abs(cur.High - prev.Close); d > tr {
		tr = d
	}
	if d := math.Abs(cur.Low - prev.Close); d > tr {
		tr = d
	}
	return tr
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
