// Package scan drives the per-cycle pipeline: fetch, extract, score,
// classify, gate, notify. One instrument's failure never propagates past its
// own pipeline.
package scan

import (
	"time"

	"github.com/giobul/usa-midcap-scanner/internal/classify"
	"github.com/giobul/usa-midcap-scanner/internal/score"
)

// Outcome is the terminal state of one instrument's pipeline in a cycle.
type Outcome string

const (
	// OutcomeNotified means an alert was dispatched (or attempted).
	OutcomeNotified Outcome = "notified"
	// OutcomeSkipped means a threshold or filter was not met.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeSuppressed means the cooldown window is still active.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeError means a pipeline stage failed; treated like a skip.
	OutcomeError Outcome = "error"
)

// Result captures everything the cycle decided about one instrument; it is
// journaled verbatim.
type Result struct {
	Symbol      string          `json:"symbol"`
	Tier        string          `json:"tier"`
	Outcome     Outcome         `json:"outcome"`
	Reason      string          `json:"reason,omitempty"`
	Label       classify.Label  `json:"label,omitempty"`
	Probability float64         `json:"probability,omitempty"`
	Score       float64         `json:"score,omitempty"`
	Convergence int             `json:"convergence,omitempty"`
	Price       float64         `json:"price,omitempty"`
	RVOL        float64         `json:"rvol,omitempty"`
	RSI         float64         `json:"rsi,omitempty"`
	DistSMA     float64         `json:"dist_sma,omitempty"`
	ATR         float64         `json:"atr,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Ts          time.Time       `json:"ts"`

	composite score.Composite
	qualified bool
}

// Summary aggregates one cycle's outcomes.
type Summary struct {
	Scanned       int
	Notified      int
	Suppressed    int
	Skipped       int
	Errors        int
	RegimeBlocked bool
}
