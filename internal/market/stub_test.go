package market

import (
	"context"
	"testing"
)

func TestSyntheticDeterministic(t *testing.T) {
	a, err := Synthetic("SOFI", 60)
	if err != nil {
		t.Fatalf("Synthetic: %v", err)
	}
	b, err := Synthetic("SOFI", 60)
	if err != nil {
		t.Fatalf("Synthetic: %v", err)
	}
	if a.Len() != 60 || b.Len() != 60 {
		t.Fatalf("lens %d/%d, want 60", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.Bar(i) != b.Bar(i) {
			t.Fatalf("bar %d differs: %+v vs %+v", i, a.Bar(i), b.Bar(i))
		}
	}
	other, err := Synthetic("PLTR", 60)
	if err != nil {
		t.Fatalf("Synthetic: %v", err)
	}
	if a.Bar(0).Open == other.Bar(0).Open {
		t.Fatalf("different symbols should seed different prices")
	}
}

func TestStubCountsCalls(t *testing.T) {
	st := NewStub()
	for i := 0; i < 3; i++ {
		if _, err := st.Bars(context.Background(), "SOFI", "5d", "15m"); err != nil {
			t.Fatalf("Bars: %v", err)
		}
	}
	if got := st.Calls("SOFI"); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if got := st.Calls("PLTR"); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}
