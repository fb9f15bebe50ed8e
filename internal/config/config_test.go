package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != "debug" || cfg.App.MetricsAddr != ":9200" {
		t.Fatalf("unexpected app section: %+v", cfg.App)
	}
	if cfg.Market.Provider != "stub" || cfg.Market.MinBars != 25 {
		t.Fatalf("unexpected market section: %+v", cfg.Market)
	}
	if len(cfg.Universe.Portfolio) != 2 || len(cfg.Universe.Watchlist) != 3 {
		t.Fatalf("unexpected universe section: %+v", cfg.Universe)
	}
	if cfg.Features.Mode != "lite" {
		t.Fatalf("features mode = %q, want lite", cfg.Features.Mode)
	}
	if cfg.Score.HighThreshold != 65 || cfg.Score.MinConvergence != 3 {
		t.Fatalf("unexpected score section: %+v", cfg.Score)
	}
	if got := cfg.Score.Weights["volume_fractal"]; got != 0.4 {
		t.Fatalf("volume_fractal weight = %v, want 0.4", got)
	}
	if cfg.Filters.MaxRSI != 70 || cfg.Filters.MaxDistSMA != 8 || cfg.Filters.MinRVOL != 1.2 {
		t.Fatalf("unexpected filters section: %+v", cfg.Filters)
	}
	if cfg.Alerting.Priority.Threshold != 60 || cfg.Alerting.Broad.CooldownHours != 6 {
		t.Fatalf("unexpected alerting section: %+v", cfg.Alerting)
	}
	if !cfg.Alerting.RegimeGate {
		t.Fatalf("regime gate should be enabled")
	}
	if !cfg.Session.Enforce || cfg.Session.Open != "10:00" {
		t.Fatalf("unexpected session section: %+v", cfg.Session)
	}
	if cfg.Scan.Workers != 4 {
		t.Fatalf("workers = %d, want 4", cfg.Scan.Workers)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	if err := Save(path, &Config{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Market.Provider != "yahoo" || cfg.Market.Interval != "15m" || cfg.Market.Benchmark != "QQQ" {
		t.Fatalf("market defaults not applied: %+v", cfg.Market)
	}
	if cfg.Score.HighThreshold != 70 || cfg.Score.BonusPerUnit != 2 {
		t.Fatalf("score defaults not applied: %+v", cfg.Score)
	}
	if cfg.Score.MinConvergence != 0 {
		t.Fatalf("min_convergence = %d, want 0 (resolved per profile at wiring time)", cfg.Score.MinConvergence)
	}
	if cfg.Filters.MaxRSI != 68 || cfg.Filters.MaxDistSMA != 7.5 || cfg.Filters.MinRVOL != 1.4 {
		t.Fatalf("filter defaults not applied: %+v", cfg.Filters)
	}
	if cfg.Alerting.Priority.Threshold != 72 || cfg.Alerting.Broad.Threshold != 78 {
		t.Fatalf("tier defaults not applied: %+v", cfg.Alerting)
	}
	if cfg.Alerting.Priority.CooldownHours != 4 || cfg.Alerting.Broad.CooldownHours != 6 {
		t.Fatalf("cooldown defaults not applied: %+v", cfg.Alerting)
	}
	if cfg.Session.Timezone != "America/New_York" {
		t.Fatalf("session defaults not applied: %+v", cfg.Session)
	}
	if cfg.Scan.Workers != 8 {
		t.Fatalf("workers default not applied: %d", cfg.Scan.Workers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
