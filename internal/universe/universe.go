// Package universe models the tiered instrument watchlist: a small priority
// subset (held positions, tighter cooldown, lower alert threshold) and the
// broad scan list.
package universe

import (
	"sort"
	"strings"
	"time"
)

// Tier identifies which subset an instrument belongs to.
type Tier int

const (
	// TierBroad covers the wide watchlist.
	TierBroad Tier = iota
	// TierPriority covers held positions.
	TierPriority
)

// String returns the tier name used in logs and journal lines.
func (t Tier) String() string {
	if t == TierPriority {
		return "priority"
	}
	return "broad"
}

// Params bundles the per-tier alerting knobs.
type Params struct {
	Threshold float64
	Cooldown  time.Duration
}

// Universe is the read-only instrument set for one run.
type Universe struct {
	symbols  []string
	priority map[string]struct{}
	tiers    map[Tier]Params
}

// New merges the priority and broad lists (trimmed, deduplicated, sorted for
// deterministic scan order) and attaches the per-tier parameters.
func New(priority, broad []string, priorityParams, broadParams Params) *Universe {
	prio := make(map[string]struct{}, len(priority))
	set := make(map[string]struct{}, len(priority)+len(broad))
	for _, sym := range priority {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		prio[sym] = struct{}{}
		set[sym] = struct{}{}
	}
	for _, sym := range broad {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		set[sym] = struct{}{}
	}
	symbols := make([]string, 0, len(set))
	for sym := range set {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return &Universe{
		symbols:  symbols,
		priority: prio,
		tiers: map[Tier]Params{
			TierPriority: priorityParams,
			TierBroad:    broadParams,
		},
	}
}

// Symbols returns the full scan list, sorted.
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.symbols))
	copy(out, u.symbols)
	return out
}

// Len returns the universe size.
func (u *Universe) Len() int { return len(u.symbols) }

// Tier reports which subset the symbol belongs to.
func (u *Universe) Tier(symbol string) Tier {
	if _, ok := u.priority[strings.ToUpper(symbol)]; ok {
		return TierPriority
	}
	return TierBroad
}

// Threshold returns the minimum composite score that may alert for a symbol.
func (u *Universe) Threshold(symbol string) float64 {
	return u.tiers[u.Tier(symbol)].Threshold
}

// Cooldown returns the minimum spacing between two alerts for a symbol. It is
// a pure function of tier membership, as the ledger requires.
func (u *Universe) Cooldown(symbol string) time.Duration {
	return u.tiers[u.Tier(symbol)].Cooldown
}
