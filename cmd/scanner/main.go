package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/giobul/usa-midcap-scanner/internal/classify"
	"github.com/giobul/usa-midcap-scanner/internal/config"
	"github.com/giobul/usa-midcap-scanner/internal/feature"
	"github.com/giobul/usa-midcap-scanner/internal/ledger"
	"github.com/giobul/usa-midcap-scanner/internal/market"
	"github.com/giobul/usa-midcap-scanner/internal/metrics"
	"github.com/giobul/usa-midcap-scanner/internal/notify"
	"github.com/giobul/usa-midcap-scanner/internal/scan"
	"github.com/giobul/usa-midcap-scanner/internal/score"
	"github.com/giobul/usa-midcap-scanner/internal/universe"
	"github.com/giobul/usa-midcap-scanner/internal/util"
)

func main() {
	_ = godotenv.Load() // best-effort

	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	flag.Parse()

	log := util.NewLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = util.NewLogger(cfg.App.LogLevel)

	token := os.Getenv("TELEGRAM_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if cfg.Alerting.Channel == "telegram" && (token == "" || chatID == "") {
		log.Error().Msg("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set")
		os.Exit(1)
	}

	if cfg.Session.Enforce {
		window, err := scan.NewWindow(cfg.Session.Timezone, cfg.Session.Open, cfg.Session.Close)
		if err != nil {
			log.Fatal().Err(err).Msg("session window")
		}
		if !window.Contains(time.Now()) {
			log.Info().Str("open", cfg.Session.Open).Str("close", cfg.Session.Close).
				Str("tz", cfg.Session.Timezone).Msg("outside trading window, exiting")
			return
		}
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	uni := universe.New(
		cfg.Universe.Portfolio,
		cfg.Universe.Watchlist,
		universe.Params{
			Threshold: cfg.Alerting.Priority.Threshold,
			Cooldown:  time.Duration(cfg.Alerting.Priority.CooldownHours * float64(time.Hour)),
		},
		universe.Params{
			Threshold: cfg.Alerting.Broad.Threshold,
			Cooldown:  time.Duration(cfg.Alerting.Broad.CooldownHours * float64(time.Hour)),
		},
	)
	if uni.Len() == 0 {
		log.Error().Msg("empty instrument universe")
		os.Exit(1)
	}

	provider, runner := market.Build(cfg.Market.Provider, uni.Symbols(), cfg.Market.Interval,
		cfg.Market.RatePerSec, util.Component(log, "market"))
	if runner != nil {
		go func() {
			if err := runner(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("provider stream stopped")
			}
		}()
	}
	fetcher := market.NewRetrier(provider, cfg.Market.MaxRetries,
		time.Duration(cfg.Market.RetryBaseMs)*time.Millisecond, util.Component(log, "fetch"))

	extractor := feature.Build(cfg.Features.Mode)
	minConvergence := cfg.Score.MinConvergence
	if minConvergence <= 0 {
		minConvergence = score.DefaultMinConvergence(extractor.Name())
	}
	scorer, err := score.New(buildWeights(cfg, extractor), cfg.Score.HighThreshold,
		minConvergence, cfg.Score.BonusPerUnit)
	if err != nil {
		log.Fatal().Err(err).Msg("scorer")
	}

	led := ledger.Open(cfg.Alerting.LedgerPath, uni.Cooldown,
		time.Duration(cfg.Alerting.RetentionHours)*time.Hour, util.Component(log, "ledger"))

	notifier := notify.NewPaced(
		notify.Build(cfg.Alerting.Channel, token, chatID, util.Component(log, "notify")),
		time.Duration(cfg.Alerting.SendDelayMs)*time.Millisecond,
	)

	var journal *scan.Journal
	if cfg.Alerting.JournalPath != "" {
		journal, err = scan.NewJournal(cfg.Alerting.JournalPath)
		if err != nil {
			log.Warn().Err(err).Msg("journal unavailable, continuing without audit trail")
		} else {
			defer journal.Close()
		}
	}

	orch := scan.New(
		util.Component(log, "scan"),
		scan.Settings{
			Lookback:   cfg.Market.Lookback,
			Interval:   cfg.Market.Interval,
			Benchmark:  cfg.Market.Benchmark,
			MinBars:    cfg.Market.MinBars,
			Workers:    cfg.Scan.Workers,
			MaxRSI:     cfg.Filters.MaxRSI,
			MaxDistSMA: cfg.Filters.MaxDistSMA,
			MinRVOL:    cfg.Filters.MinRVOL,
			RegimeGate: cfg.Alerting.RegimeGate,
		},
		fetcher, extractor, scorer, classify.NewClassifier(), led, notifier, uni, journal,
	)

	log.Info().Int("universe", uni.Len()).Str("profile", extractor.Name()).Msg("scan cycle starting")
	summary, err := orch.RunCycle(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scan cycle aborted")
	}
	log.Info().
		Int("scanned", summary.Scanned).
		Int("notified", summary.Notified).
		Int("suppressed", summary.Suppressed).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Bool("regime_blocked", summary.RegimeBlocked).
		Msg("scan cycle complete")
}

// buildWeights converts configured weights into the scorer's keyed form,
// falling back to the active profile's canonical weighting.
func buildWeights(cfg *config.Config, extractor feature.Extractor) score.Weights {
	if len(cfg.Score.Weights) == 0 {
		if extractor.Name() == "lite" {
			return score.DefaultLiteWeights()
		}
		return score.DefaultFullWeights()
	}
	weights := make(score.Weights, len(cfg.Score.Weights))
	for name, w := range cfg.Score.Weights {
		weights[feature.Key(name)] = w
	}
	return weights
}
