package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/giobul/usa-midcap-scanner/internal/classify"
	"github.com/giobul/usa-midcap-scanner/internal/feature"
	"github.com/giobul/usa-midcap-scanner/internal/ledger"
	"github.com/giobul/usa-midcap-scanner/internal/market"
	"github.com/giobul/usa-midcap-scanner/internal/metrics"
	"github.com/giobul/usa-midcap-scanner/internal/notify"
	"github.com/giobul/usa-midcap-scanner/internal/score"
	"github.com/giobul/usa-midcap-scanner/internal/series"
	"github.com/giobul/usa-midcap-scanner/internal/universe"
)

// Settings bundles the cycle parameters the orchestrator needs beyond its
// collaborators.
type Settings struct {
	Lookback   string
	Interval   string
	Benchmark  string
	MinBars    int
	Workers    int
	MaxRSI     float64
	MaxDistSMA float64
	MinRVOL    float64
	RegimeGate bool
}

// Orchestrator runs one scan cycle over the instrument universe through a
// bounded worker pool.
type Orchestrator struct {
	log        zerolog.Logger
	settings   Settings
	provider   market.Provider
	extractor  feature.Extractor
	scorer     *score.Scorer
	classifier *classify.Classifier
	ledger     *ledger.Ledger
	notifier   notify.Notifier
	uni        *universe.Universe
	journal    *Journal
	now        func() time.Time
}

// New wires the orchestrator. journal may be nil.
func New(
	log zerolog.Logger,
	settings Settings,
	provider market.Provider,
	extractor feature.Extractor,
	scorer *score.Scorer,
	classifier *classify.Classifier,
	led *ledger.Ledger,
	notifier notify.Notifier,
	uni *universe.Universe,
	journal *Journal,
) *Orchestrator {
	if settings.Workers <= 0 {
		settings.Workers = 8
	}
	if settings.MinBars <= 0 {
		settings.MinBars = 30
	}
	return &Orchestrator{
		log:        log,
		settings:   settings,
		provider:   provider,
		extractor:  extractor,
		scorer:     scorer,
		classifier: classifier,
		ledger:     led,
		notifier:   notifier,
		uni:        uni,
		journal:    journal,
		now:        time.Now,
	}
}

// WithClock injects the time source (tests).
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	if now != nil {
		o.now = now
	}
	return o
}

// RunCycle scans the full universe once. Per-instrument failures are
// contained; only a canceled context aborts the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) (Summary, error) {
	bench := o.fetchBenchmark(ctx)

	if o.settings.RegimeGate && !o.regimeHealthy(bench) {
		o.log.Info().Str("benchmark", o.settings.Benchmark).Msg("weak market regime, cycle skipped")
		return Summary{RegimeBlocked: true}, nil
	}

	symbols := o.uni.Symbols()
	results := make([]Result, len(symbols))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.settings.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = o.evaluate(ctx, symbols[idx], bench)
			}
		}()
	}
	for idx := range symbols {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Summary{}, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	// All instruments have been attempted; now run the single-threaded
	// dispatch pass so ledger writes and notification pacing are serialized.
	o.dispatch(ctx, results)

	summary := Summary{Scanned: len(results)}
	for i := range results {
		res := &results[i]
		switch res.Outcome {
		case OutcomeNotified:
			summary.Notified++
		case OutcomeSuppressed:
			summary.Suppressed++
		case OutcomeError:
			summary.Errors++
		default:
			summary.Skipped++
		}
		metrics.InstrumentsScanned.WithLabelValues(string(res.Outcome)).Inc()
		o.journal.Record(*res)
	}
	return summary, nil
}

// dispatch orders qualified candidates by score (descending, then symbol for
// determinism), re-checks the cooldown, records the alert, and sends it. The
// ledger write happens before the send so a dead channel is not hammered
// within one cooldown window.
func (o *Orchestrator) dispatch(ctx context.Context, results []Result) {
	order := make([]int, 0, len(results))
	for i := range results {
		if results[i].qualified {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := results[order[a]], results[order[b]]
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return ra.Symbol < rb.Symbol
	})

	now := o.now()
	for _, idx := range order {
		res := &results[idx]
		if !o.ledger.ShouldAlert(res.Symbol, now) {
			res.Outcome = OutcomeSuppressed
			res.Reason = "cooldown active"
			continue
		}
		if err := o.ledger.Record(res.Symbol, now); err != nil {
			o.log.Error().Err(err).Str("symbol", res.Symbol).Msg("ledger write failed, alert withheld")
			res.Outcome = OutcomeError
			res.Reason = "ledger write failed"
			continue
		}
		res.Outcome = OutcomeNotified
		metrics.AlertsSent.WithLabelValues(string(res.Label)).Inc()
		if err := o.notifier.Send(ctx, FormatAlert(*res)); err != nil {
			// Alert stays recorded as attempted; cooldown prevents a retry
			// storm against a channel that is down.
			metrics.NotifyFailures.Inc()
			o.log.Warn().Err(err).Str("symbol", res.Symbol).Msg("notification delivery failed")
		}
	}
}

// fetchBenchmark loads the benchmark series once per cycle; a failure
// degrades relative-strength features to neutral instead of blocking.
func (o *Orchestrator) fetchBenchmark(ctx context.Context) *series.Series {
	if o.settings.Benchmark == "" {
		return nil
	}
	bench, err := o.provider.Bars(ctx, o.settings.Benchmark, o.settings.Lookback, o.settings.Interval)
	if err != nil {
		o.log.Warn().Err(err).Str("benchmark", o.settings.Benchmark).Msg("benchmark unavailable, features degrade to neutral")
		return nil
	}
	return bench
}

// regimeHealthy reports whether the benchmark closed above its 20-bar mean.
// A missing benchmark degrades open: the scan proceeds.
func (o *Orchestrator) regimeHealthy(bench *series.Series) bool {
	if bench == nil {
		return true
	}
	sma, ok := bench.SMA(20)
	if !ok {
		return true
	}
	return bench.Last().Close >= sma
}
