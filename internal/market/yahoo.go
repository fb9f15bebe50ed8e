package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo fetches bar history from the Yahoo Finance chart endpoint. Every
// request waits on a shared rate limiter first, which is the scanner's
// inter-request pacing: the upstream degrades to empty responses under burst
// load rather than erroring.
type Yahoo struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// YahooOption configures Yahoo construction.
type YahooOption func(*Yahoo)

// WithBaseURL overrides the upstream base URL (tests point this at a local
// server).
func WithBaseURL(base string) YahooOption {
	return func(y *Yahoo) {
		if base != "" {
			y.baseURL = base
		}
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) YahooOption {
	return func(y *Yahoo) {
		if c != nil {
			y.client = c
		}
	}
}

// WithRateLimit caps upstream requests per second.
func WithRateLimit(perSec float64) YahooOption {
	return func(y *Yahoo) {
		if perSec > 0 {
			y.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

// NewYahoo builds a provider with a 10s request timeout and 4 req/s pacing by
// default.
func NewYahoo(opts ...YahooOption) *Yahoo {
	y := &Yahoo{
		baseURL: defaultYahooBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(4), 1),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

// yahooQuote uses pointer slices: the upstream emits JSON nulls for halted or
// partial intervals and those rows must be dropped, not zero-filled.
type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// Bars fetches and normalizes the chart response for one symbol.
func (y *Yahoo) Bars(ctx context.Context, symbol, lookback, interval string) (*series.Series, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		y.baseURL, url.PathEscape(symbol), url.QueryEscape(lookback), url.QueryEscape(interval))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "usa-midcap-scanner/1.0")
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d: %w", symbol, resp.StatusCode, ErrUnavailable)
	}
	var payload yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", symbol, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("fetch %s: %s: %w", symbol, payload.Chart.Error.Code, ErrUnavailable)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("fetch %s: empty result: %w", symbol, ErrUnavailable)
	}
	return normalizeChart(symbol, payload.Chart.Result[0])
}

// normalizeChart converts the columnar response to bars, skipping rows with
// any missing field. The upstream sometimes returns more than one quote
// block for a symbol; only the first is authoritative.
func normalizeChart(symbol string, res yahooChartResult) (*series.Series, error) {
	if len(res.Indicators.Quote) == 0 || len(res.Timestamp) == 0 {
		return nil, fmt.Errorf("chart %s: no quote data: %w", symbol, ErrUnavailable)
	}
	quote := res.Indicators.Quote[0]
	bars := make([]series.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		c := at(quote.Close, i)
		v := at(quote.Volume, i)
		if o == nil || h == nil || l == nil || c == nil || v == nil {
			continue
		}
		bars = append(bars, series.Bar{
			Ts:     time.Unix(ts, 0).UTC(),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *c,
			Volume: *v,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("chart %s: all rows null: %w", symbol, ErrUnavailable)
	}
	return series.New(symbol, bars)
}

func at(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}
