package scan

import (
	"testing"
	"time"
)

func TestWindowContains(t *testing.T) {
	w, err := NewWindow("America/New_York", "10:00", "16:00")
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	// January 15, 2024 is EST (UTC-5).
	cases := []struct {
		utc  time.Time
		want bool
	}{
		{time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), false}, // 09:30 ET
		{time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC), true},   // 10:00 ET
		{time.Date(2024, 1, 15, 18, 45, 0, 0, time.UTC), true},  // 13:45 ET
		{time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC), true},   // 16:00 ET inclusive
		{time.Date(2024, 1, 15, 21, 1, 0, 0, time.UTC), false},  // 16:01 ET
	}
	for _, tc := range cases {
		if got := w.Contains(tc.utc); got != tc.want {
			t.Fatalf("Contains(%v) = %v, want %v", tc.utc, got, tc.want)
		}
	}
}

func TestWindowHandlesDaylightSaving(t *testing.T) {
	w, err := NewWindow("America/New_York", "10:00", "16:00")
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	// July 15, 2024 is EDT (UTC-4): 14:30 UTC is 10:30 ET.
	if !w.Contains(time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC)) {
		t.Fatalf("summer 10:30 ET should be inside the window")
	}
}

func TestNewWindowRejectsBadInput(t *testing.T) {
	if _, err := NewWindow("Not/AZone", "10:00", "16:00"); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
	if _, err := NewWindow("UTC", "ten", "16:00"); err == nil {
		t.Fatalf("expected error for unparsable open")
	}
	if _, err := NewWindow("UTC", "16:00", "10:00"); err == nil {
		t.Fatalf("expected error for close before open")
	}
}
