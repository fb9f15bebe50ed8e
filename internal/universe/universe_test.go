package universe

import (
	"reflect"
	"testing"
	"time"
)

func TestNewMergesAndDedupes(t *testing.T) {
	u := New(
		[]string{" sofi ", "PLTR", ""},
		[]string{"sofi", "nvda", "PLTR", "amd"},
		Params{Threshold: 72, Cooldown: 4 * time.Hour},
		Params{Threshold: 78, Cooldown: 6 * time.Hour},
	)
	want := []string{"AMD", "NVDA", "PLTR", "SOFI"}
	if got := u.Symbols(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Symbols() = %v, want %v", got, want)
	}
	if u.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", u.Len())
	}
}

func TestTierParams(t *testing.T) {
	u := New(
		[]string{"SOFI"},
		[]string{"NVDA"},
		Params{Threshold: 72, Cooldown: 4 * time.Hour},
		Params{Threshold: 78, Cooldown: 6 * time.Hour},
	)
	if u.Tier("sofi") != TierPriority {
		t.Fatalf("SOFI should be priority tier")
	}
	if u.Tier("NVDA") != TierBroad {
		t.Fatalf("NVDA should be broad tier")
	}
	if got := u.Threshold("SOFI"); got != 72 {
		t.Fatalf("priority threshold = %v, want 72", got)
	}
	if got := u.Threshold("NVDA"); got != 78 {
		t.Fatalf("broad threshold = %v, want 78", got)
	}
	if got := u.Cooldown("SOFI"); got != 4*time.Hour {
		t.Fatalf("priority cooldown = %v, want 4h", got)
	}
	if got := u.Cooldown("UNKNOWN"); got != 6*time.Hour {
		t.Fatalf("unknown symbols get broad cooldown, got %v", got)
	}
}

func TestTierString(t *testing.T) {
	if TierPriority.String() != "priority" || TierBroad.String() != "broad" {
		t.Fatalf("unexpected tier names %q %q", TierPriority, TierBroad)
	}
}
