package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fixedCooldown(d time.Duration) CooldownFunc {
	return func(string) time.Duration { return d }
}

func TestMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := Open(path, fixedCooldown(time.Hour), 24*time.Hour, zerolog.Nop())
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d entries", l.Len())
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	l := Open(path, fixedCooldown(time.Hour), 24*time.Hour, zerolog.Nop())
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger from corrupt file, got %d entries", l.Len())
	}
	if !l.ShouldAlert("ANY", time.Now()) {
		t.Fatalf("reset ledger must allow alerts")
	}
}

func TestCooldownInvariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := Open(path, fixedCooldown(6*time.Hour), 24*time.Hour, zerolog.Nop())

	t1 := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	if !l.ShouldAlert("SOFI", t1) {
		t.Fatalf("fresh instrument must alert")
	}
	if err := l.Record("SOFI", t1); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if l.ShouldAlert("SOFI", t1.Add(5*time.Hour+59*time.Minute)) {
		t.Fatalf("alert allowed inside cooldown window")
	}
	if !l.ShouldAlert("SOFI", t1.Add(6*time.Hour)) {
		t.Fatalf("alert blocked after cooldown elapsed")
	}
}

func TestRecordPersistsSynchronously(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l := Open(path, fixedCooldown(time.Hour), 24*time.Hour, zerolog.Nop())

	now := time.Now().UTC()
	if err := l.Record("NVDA", now); err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ledger file missing after Record: %v", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("ledger file not valid JSON: %v", err)
	}
	if _, ok := raw["NVDA"]; !ok {
		t.Fatalf("NVDA not persisted: %v", raw)
	}
}

func TestReopenSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	first := Open(path, fixedCooldown(6*time.Hour), 24*time.Hour, zerolog.Nop())
	now := time.Now().UTC()
	if err := first.Record("PLTR", now); err != nil {
		t.Fatalf("Record: %v", err)
	}

	second := Open(path, fixedCooldown(6*time.Hour), 24*time.Hour, zerolog.Nop())
	if second.Len() != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", second.Len())
	}
	if second.ShouldAlert("PLTR", now.Add(time.Hour)) {
		t.Fatalf("cooldown lost across restart")
	}
}

func TestPruneOldEntriesOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	stale := time.Now().Add(-48 * time.Hour).Format(time.RFC3339Nano)
	fresh := time.Now().Format(time.RFC3339Nano)
	data, _ := json.Marshal(map[string]string{"OLD": stale, "NEW": fresh})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	l := Open(path, fixedCooldown(time.Hour), 24*time.Hour, zerolog.Nop())
	if l.Len() != 1 {
		t.Fatalf("expected stale entry pruned, got %d entries", l.Len())
	}
	if !l.ShouldAlert("OLD", time.Now()) {
		t.Fatalf("pruned instrument must be alertable")
	}
}

func TestUnparsableEntryDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	data, _ := json.Marshal(map[string]string{"BAD": "yesterday-ish"})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	l := Open(path, fixedCooldown(time.Hour), 24*time.Hour, zerolog.Nop())
	if l.Len() != 0 {
		t.Fatalf("expected unparsable entry dropped, got %d entries", l.Len())
	}
}
