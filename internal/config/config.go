// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Market describes the upstream bar provider and the fetch policy applied at
// that boundary.
type Market struct {
	Provider    string  `yaml:"provider"`
	Interval    string  `yaml:"interval"`
	Lookback    string  `yaml:"lookback"`
	Benchmark   string  `yaml:"benchmark"`
	RatePerSec  float64 `yaml:"rate_per_sec"`
	MaxRetries  int     `yaml:"max_retries"`
	RetryBaseMs int     `yaml:"retry_base_ms"`
	MinBars     int     `yaml:"min_bars"`
}

// Universe lists the tiered instrument sets: held positions and the broad
// watchlist.
type Universe struct {
	Portfolio []string `yaml:"portfolio"`
	Watchlist []string `yaml:"watchlist"`
}

// Features selects the active extractor profile.
type Features struct {
	Mode string `yaml:"mode"`
}

// Score groups the composite scorer knobs. Weights are keyed by sub-score
// name and must sum to 1.0; an empty map selects the profile default, as does
// a zero MinConvergence (4 for the full profile, 2 for lite).
type Score struct {
	HighThreshold  float64            `yaml:"high_threshold"`
	MinConvergence int                `yaml:"min_convergence"`
	BonusPerUnit   float64            `yaml:"bonus_per_unit"`
	Weights        map[string]float64 `yaml:"weights"`
}

// Filters are the safe-entry protections applied before scoring.
type Filters struct {
	MaxRSI     float64 `yaml:"max_rsi"`
	MaxDistSMA float64 `yaml:"max_dist_sma20"`
	MinRVOL    float64 `yaml:"min_rvol"`
}

// Tier bundles the per-tier alert threshold and cooldown.
type Tier struct {
	Threshold     float64 `yaml:"threshold"`
	CooldownHours float64 `yaml:"cooldown_hours"`
}

// Alerting groups the alert gate, ledger persistence, and dispatch settings.
type Alerting struct {
	Channel        string `yaml:"channel"`
	Priority       Tier   `yaml:"priority"`
	Broad          Tier   `yaml:"broad"`
	LedgerPath     string `yaml:"ledger_path"`
	JournalPath    string `yaml:"journal_path"`
	RetentionHours int    `yaml:"retention_hours"`
	SendDelayMs    int    `yaml:"send_delay_ms"`
	RegimeGate     bool   `yaml:"regime_gate"`
}

// Session restricts execution to a trading-hours window in the given
// timezone; zero value disables the restriction.
type Session struct {
	Enforce  bool   `yaml:"enforce"`
	Timezone string `yaml:"timezone"`
	Open     string `yaml:"open"`
	Close    string `yaml:"close"`
}

// Scan bounds the per-cycle concurrency.
type Scan struct {
	Workers int `yaml:"workers"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Market   Market   `yaml:"market"`
	Universe Universe `yaml:"universe"`
	Features Features `yaml:"features"`
	Score    Score    `yaml:"score"`
	Filters  Filters  `yaml:"filters"`
	Alerting Alerting `yaml:"alerting"`
	Session  Session  `yaml:"session"`
	Scan     Scan     `yaml:"scan"`
}

// Load reads a YAML file from disk and hydrates a Config struct, filling
// unset knobs with defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.MetricsAddr == "" {
		c.App.MetricsAddr = ":9109"
	}
	if c.Market.Provider == "" {
		c.Market.Provider = "yahoo"
	}
	if c.Market.Interval == "" {
		c.Market.Interval = "15m"
	}
	if c.Market.Lookback == "" {
		c.Market.Lookback = "5d"
	}
	if c.Market.Benchmark == "" {
		c.Market.Benchmark = "QQQ"
	}
	if c.Market.RatePerSec <= 0 {
		c.Market.RatePerSec = 4
	}
	if c.Market.MaxRetries <= 0 {
		c.Market.MaxRetries = 3
	}
	if c.Market.RetryBaseMs <= 0 {
		c.Market.RetryBaseMs = 500
	}
	if c.Market.MinBars <= 0 {
		c.Market.MinBars = 30
	}
	if c.Features.Mode == "" {
		c.Features.Mode = "full"
	}
	if c.Score.HighThreshold <= 0 {
		c.Score.HighThreshold = 70
	}
	// Score.MinConvergence stays zero here: the default depends on the active
	// feature profile and is resolved at wiring time.
	if c.Score.BonusPerUnit <= 0 {
		c.Score.BonusPerUnit = 2
	}
	if c.Filters.MaxRSI <= 0 {
		c.Filters.MaxRSI = 68
	}
	if c.Filters.MaxDistSMA <= 0 {
		c.Filters.MaxDistSMA = 7.5
	}
	if c.Filters.MinRVOL <= 0 {
		c.Filters.MinRVOL = 1.4
	}
	if c.Alerting.Channel == "" {
		c.Alerting.Channel = "telegram"
	}
	if c.Alerting.Priority.Threshold <= 0 {
		c.Alerting.Priority.Threshold = 72
	}
	if c.Alerting.Priority.CooldownHours <= 0 {
		c.Alerting.Priority.CooldownHours = 4
	}
	if c.Alerting.Broad.Threshold <= 0 {
		c.Alerting.Broad.Threshold = 78
	}
	if c.Alerting.Broad.CooldownHours <= 0 {
		c.Alerting.Broad.CooldownHours = 6
	}
	if c.Alerting.LedgerPath == "" {
		c.Alerting.LedgerPath = "data/alert_ledger.json"
	}
	if c.Alerting.RetentionHours <= 0 {
		c.Alerting.RetentionHours = 24
	}
	if c.Alerting.SendDelayMs <= 0 {
		c.Alerting.SendDelayMs = 400
	}
	if c.Session.Timezone == "" {
		c.Session.Timezone = "America/New_York"
	}
	if c.Session.Open == "" {
		c.Session.Open = "10:00"
	}
	if c.Session.Close == "" {
		c.Session.Close = "16:00"
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = 8
	}
}
