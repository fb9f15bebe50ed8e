package market

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// Stub serves pre-registered or synthetic series, useful for tests and
// offline work.
type Stub struct {
	mu     sync.Mutex
	series map[string]*series.Series
	errs   map[string]error
	calls  map[string]int
}

// NewStub builds an empty stub provider.
func NewStub() *Stub {
	return &Stub{
		series: make(map[string]*series.Series),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetSeries registers a canned series for a symbol.
func (st *Stub) SetSeries(symbol string, s *series.Series) {
	st.mu.Lock()
	st.series[symbol] = s
	st.mu.Unlock()
}

// SetError makes every fetch for symbol fail with err.
func (st *Stub) SetError(symbol string, err error) {
	st.mu.Lock()
	st.errs[symbol] = err
	st.mu.Unlock()
}

// Calls reports how many fetches were made for symbol.
func (st *Stub) Calls(symbol string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.calls[symbol]
}

// Bars returns the registered series, a registered error, or a deterministic
// synthetic series derived from the symbol name.
func (st *Stub) Bars(_ context.Context, symbol, _, _ string) (*series.Series, error) {
	st.mu.Lock()
	st.calls[symbol]++
	s, okSeries := st.series[symbol]
	err, okErr := st.errs[symbol]
	st.mu.Unlock()
	if okErr {
		return nil, err
	}
	if okSeries {
		return s, nil
	}
	return Synthetic(symbol, 60)
}

// Synthetic builds a deterministic bar series seeded by the symbol name, so
// repeated cycles against the stub reproduce identical decisions.
func Synthetic(symbol string, n int) (*series.Series, error) {
	var seed float64
	for _, r := range symbol {
		seed += float64(r)
	}
	start := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	price := 20 + math.Mod(seed, 80)
	bars := make([]series.Bar, 0, n)
	for i := 0; i < n; i++ {
		drift := math.Sin(seed+float64(i)/7) * 0.002
		open := price
		close := price * (1 + drift)
		high := math.Max(open, close) * 1.001
		low := math.Min(open, close) * 0.999
		vol := 100000 + 20000*math.Abs(math.Sin(seed+float64(i)/3))
		bars = append(bars, series.Bar{
			Ts:     start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: vol,
		})
		price = close
	}
	s, err := series.New(symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("synthetic %s: %w", symbol, err)
	}
	return s, nil
}
