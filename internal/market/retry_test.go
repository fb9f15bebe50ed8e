package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/giobul/usa-midcap-scanner/internal/series"
)

// flaky fails a fixed number of times before delegating to a stub.
type flaky struct {
	failures int
	calls    int
	inner    *Stub
}

func (f *flaky) Bars(ctx context.Context, symbol, lookback, interval string) (*series.Series, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient")
	}
	return f.inner.Bars(ctx, symbol, lookback, interval)
}

func TestRetrierExhaustsBudget(t *testing.T) {
	stub := NewStub()
	stub.SetError("SOFI", errors.New("boom"))
	r := NewRetrier(stub, 3, time.Millisecond, zerolog.Nop())

	if _, err := r.Bars(context.Background(), "SOFI", "5d", "15m"); err == nil {
		t.Fatalf("expected error after budget exhausted")
	}
	if got := stub.Calls("SOFI"); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestRetrierRecoversOnLaterAttempt(t *testing.T) {
	f := &flaky{failures: 1, inner: NewStub()}
	r := NewRetrier(f, 3, time.Millisecond, zerolog.Nop())

	s, err := r.Bars(context.Background(), "PLTR", "5d", "15m")
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if s == nil || s.Len() == 0 {
		t.Fatalf("expected recovered series")
	}
	if f.calls != 2 {
		t.Fatalf("calls = %d, want 2", f.calls)
	}
}

func TestRetrierStopsOnCanceledContext(t *testing.T) {
	stub := NewStub()
	stub.SetError("SOFI", context.Canceled)
	r := NewRetrier(stub, 3, time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Bars(ctx, "SOFI", "5d", "15m"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := stub.Calls("SOFI"); got != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on cancel)", got)
	}
}
