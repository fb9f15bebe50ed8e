package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

const defaultBinanceWSURL = "wss://stream.binance.com:9443"

// Stream maintains a live bar cache from Binance kline websockets, for
// running the scanner against crypto universes without an HTTP history
// endpoint. Run must be started before the cache can answer; Bars serves
// whatever closed klines have accumulated.
type Stream struct {
	log      zerolog.Logger
	baseURL  string
	symbols  []string
	interval string
	maxBars  int

	mu   sync.RWMutex
	bars map[string][]series.Bar
}

// NewStream builds a kline aggregator for the given symbols and interval
// (Binance notation, e.g. "15m"). maxBars caps the per-symbol cache.
func NewStream(log zerolog.Logger, symbols []string, interval string, maxBars int) *Stream {
	if interval == "" {
		interval = "15m"
	}
	if maxBars <= 0 {
		maxBars = 200
	}
	cleaned := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym != "" {
			cleaned = append(cleaned, strings.ToUpper(sym))
		}
	}
	return &Stream{
		log:      log,
		baseURL:  defaultBinanceWSURL,
		symbols:  cleaned,
		interval: interval,
		maxBars:  maxBars,
		bars:     make(map[string][]series.Bar),
	}
}

// WithWSBaseURL overrides the websocket endpoint (tests).
func (s *Stream) WithWSBaseURL(base string) *Stream {
	if base != "" {
		s.baseURL = strings.TrimSuffix(base, "/")
	}
	return s
}

type klineEnvelope struct {
	Stream string    `json:"stream"`
	Data   klineData `json:"data"`
}

type klineData struct {
	Kline kline `json:"k"`
}

type kline struct {
	StartTime int64  `json:"t"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	Closed    bool   `json:"x"`
}

// Run consumes the combined kline stream until the context is canceled,
// reconnecting with capped exponential backoff on failure.
func (s *Stream) Run(ctx context.Context) error {
	if len(s.symbols) == 0 {
		return fmt.Errorf("kline stream requires at least one symbol")
	}
	streams := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		streams[i] = strings.ToLower(sym) + "@kline_" + s.interval
	}
	url := fmt.Sprintf("%s/stream?streams=%s", s.baseURL, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.consume(ctx, url); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn().Err(err).Msg("kline stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (s *Stream) consume(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info().Strs("symbols", s.symbols).Str("interval", s.interval).Msg("connected kline stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var env klineEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			s.log.Warn().Err(err).Msg("failed to decode kline message")
			continue
		}
		if !env.Data.Kline.Closed {
			continue
		}
		symbol := parseStreamSymbol(env.Stream)
		bar, err := env.Data.Kline.toBar()
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("invalid kline payload")
			continue
		}
		s.append(symbol, bar)
	}
}

func (k kline) toBar() (series.Bar, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return series.Bar{}, fmt.Errorf("open: %w", err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return series.Bar{}, fmt.Errorf("high: %w", err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return series.Bar{}, fmt.Errorf("low: %w", err)
	}
	closePx, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return series.Bar{}, fmt.Errorf("close: %w", err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return series.Bar{}, fmt.Errorf("volume: %w", err)
	}
	return series.Bar{
		Ts:     time.UnixMilli(k.StartTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePx,
		Volume: vol,
	}, nil
}

func (s *Stream) append(symbol string, bar series.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.bars[symbol]
	if n := len(existing); n > 0 && !bar.Ts.After(existing[n-1].Ts) {
		return
	}
	existing = append(existing, bar)
	if len(existing) > s.maxBars {
		existing = existing[len(existing)-s.maxBars:]
	}
	s.bars[symbol] = existing
}

// Bars serves the cached history for symbol; lookback and interval are
// ignored because the stream has a single configured interval. Returns
// ErrUnavailable until the cache has accumulated data.
func (s *Stream) Bars(_ context.Context, symbol, _, _ string) (*series.Series, error) {
	s.mu.RLock()
	cached := s.bars[strings.ToUpper(symbol)]
	out := make([]series.Bar, len(cached))
	copy(out, cached)
	s.mu.RUnlock()
	if len(out) == 0 {
		return nil, fmt.Errorf("stream cache empty for %s: %w", symbol, ErrUnavailable)
	}
	return series.New(strings.ToUpper(symbol), out)
}

func parseStreamSymbol(stream string) string {
	parts := strings.Split(stream, "@")
	if len(parts) == 0 || parts[0] == "" {
		return strings.ToUpper(stream)
	}
	return strings.ToUpper(parts[0])
}
