package limit

import (
	"math"
	"testing"
)

func mustBounded(t *testing.T, n float64) Limit {
	t.Helper()
	l, err := Bounded(n)
	if err != nil {
		t.Fatalf("Bounded(%v): %v", n, err)
	}
	return l
}

func TestOverage_Bounded(t *testing.T) {
	tests := []struct {
		used, limit, want float64
	}{
		{0, 0, 0},
		{5, 10, 0},
		{10, 10, 0},
		{12.5, 10, 2.5},
		{100, 0, 100},
	}
	for _, tc := range tests {
		got := mustBounded(t, tc.limit).Overage(tc.used)
		if got != tc.want {
			t.Errorf("Overage(%v) with limit %v = %v, want %v", tc.used, tc.limit, got, tc.want)
		}
	}
}

func TestOverage_Unlimited(t *testing.T) {
	for _, used := range []float64{0, 1, 1e12} {
		if got := Unlimited().Overage(used); got != 0 {
			t.Errorf("Unlimited().Overage(%v) = %v, want 0", used, got)
		}
	}
}

func TestBounded_Rejects(t *testing.T) {
	for _, n := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := Bounded(n); err == nil {
			t.Errorf("Bounded(%v): expected error", n)
		}
	}
}

func TestZeroValueIsBoundedZero(t *testing.T) {
	var l Limit
	if l.IsUnlimited() {
		t.Fatal("zero value must be bounded")
	}
	if v, ok := l.Value(); !ok || v != 0 {
		t.Errorf("Value() = %v, %v", v, ok)
	}
}

func TestParseString(t *testing.T) {
	for _, s := range []string{"unlimited", "0", "10", "2.5"} {
		l, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if l.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, l.String())
		}
	}
	if _, err := Parse("lots"); err == nil {
		t.Error("expected error for non-numeric limit")
	}
	if _, err := Parse("-3"); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestFraction(t *testing.T) {
	if _, ok := Unlimited().Fraction(10); ok {
		t.Error("unlimited quota has no fraction")
	}
	f, ok := mustBounded(t, 100).Fraction(85)
	if !ok || f != 0.85 {
		t.Errorf("Fraction = %v, %v", f, ok)
	}
	f, _ = mustBounded(t, 0).Fraction(1)
	if !math.IsInf(f, 1) {
		t.Errorf("expected +Inf for zero ceiling, got %v", f)
	}
	f, _ = mustBounded(t, 0).Fraction(0)
	if f != 0 {
		t.Errorf("expected 0 for zero usage on zero ceiling, got %v", f)
	}
}
