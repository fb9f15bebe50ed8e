package scan

import (
	"fmt"
	"time"
)

// Window is a trading-hours restriction in a fixed timezone.
type Window struct {
	loc   *time.Location
	open  int // minutes since midnight
	close int
}

// NewWindow parses "HH:MM" bounds in the given IANA timezone.
func NewWindow(timezone, open, close string) (*Window, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	openMin, err := parseClock(open)
	if err != nil {
		return nil, fmt.Errorf("window open: %w", err)
	}
	closeMin, err := parseClock(close)
	if err != nil {
		return nil, fmt.Errorf("window close: %w", err)
	}
	if closeMin <= openMin {
		return nil, fmt.Errorf("window close %s not after open %s", close, open)
	}
	return &Window{loc: loc, open: openMin, close: closeMin}, nil
}

// Contains reports whether now falls inside the window.
func (w *Window) Contains(now time.Time) bool {
	local := now.In(w.loc)
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= w.open && minutes <= w.close
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
