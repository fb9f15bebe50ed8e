// Package ledger enforces the per-instrument alert cooldown. The ledger is
// the single piece of state shared across workers and across process
// restarts: every write is persisted synchronously with an atomic replace
// before the alert is considered recorded.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CooldownFunc resolves the cooldown for an instrument; in practice this is
// the universe tier lookup.
type CooldownFunc func(symbol string) time.Duration

// Ledger is a mutex-guarded symbol -> last-alert-time map with file
// persistence.
type Ledger struct {
	mu        sync.Mutex
	path      string
	cooldown  CooldownFunc
	retention time.Duration
	entries   map[string]time.Time
	log       zerolog.Logger
}

// Open loads the persisted ledger. A missing, empty, or corrupt file yields
// an empty ledger (logged at warn), never an error: a reset ledger only means
// one extra round of alerts. Entries older than retention are pruned at load.
func Open(path string, cooldown CooldownFunc, retention time.Duration, log zerolog.Logger) *Ledger {
	l := &Ledger{
		path:      path,
		cooldown:  cooldown,
		retention: retention,
		entries:   make(map[string]time.Time),
		log:       log,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("alert ledger unreadable, starting empty")
		}
		return l
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("alert ledger corrupt, starting empty")
		return l
	}
	cutoff := time.Now().Add(-retention)
	for sym, stamp := range raw {
		ts, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			log.Warn().Str("symbol", sym).Str("value", stamp).Msg("dropping unparsable ledger entry")
			continue
		}
		if retention > 0 && ts.Before(cutoff) {
			continue
		}
		l.entries[sym] = ts
	}
	return l
}

// ShouldAlert reports whether the cooldown window for symbol has elapsed.
func (l *Ledger) ShouldAlert(symbol string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.entries[symbol]
	if !ok {
		return true
	}
	return now.Sub(last) >= l.cooldown(symbol)
}

// Record upserts the symbol's last-alert time and persists the full ledger
// before returning, so a crash immediately after an alert cannot duplicate
// it on the next run.
func (l *Ledger) Record(symbol string, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[symbol] = now
	return l.persistLocked()
}

// Len returns the number of tracked instruments.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// persistLocked writes the whole map to a temp file and renames it over the
// target, so readers never observe a partial ledger.
func (l *Ledger) persistLocked() error {
	raw := make(map[string]string, len(l.entries))
	for sym, ts := range l.entries {
		raw[sym] = ts.Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("ledger temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close ledger temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
