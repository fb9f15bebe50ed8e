package feature

import (
	"strings"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// Extractor maps a bar series (plus an optional benchmark series) to a
// sub-score vector. Implementations must populate every key of their profile,
// substituting neutral defaults for anything they cannot compute.
type Extractor interface {
	Name() string
	Keys() []Key
	Extract(s *series.Series, bench *series.Series) Vector
}

// Build returns the extractor matching the configured mode. Unknown modes
// fall back to the full profile.
func Build(mode string) Extractor {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "lite":
		return NewLite()
	case "", "full":
		return NewFull()
	default:
		return NewFull()
	}
}
