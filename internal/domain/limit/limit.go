// Package limit models a plan quota that is either unlimited or bounded.
package limit

import (
	"fmt"
	"math"
	"strconv"
)

// UnlimitedText is the textual form of an unlimited quota.
const UnlimitedText = "unlimited"

// Limit is a plan quota: Unlimited, or Bounded by a non-negative amount.
// The zero value is Bounded(0).
type Limit struct {
	unlimited bool
	value     float64
}

// Unlimited returns a quota without a ceiling.
func Unlimited() Limit {
	return Limit{unlimited: true}
}

// Bounded returns a quota capped at n. n must be finite and non-negative.
func Bounded(n float64) (Limit, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Limit{}, fmt.Errorf("limit must be a finite number")
	}
	if n < 0 {
		return Limit{}, fmt.Errorf("limit must not be negative, got %v", n)
	}
	return Limit{value: n}, nil
}

// Parse reads the textual form produced by String.
func Parse(s string) (Limit, error) {
	if s == UnlimitedText {
		return Unlimited(), nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Limit{}, fmt.Errorf("invalid limit %q: %w", s, err)
	}
	return Bounded(n)
}

// IsUnlimited reports whether the quota has no ceiling.
func (l Limit) IsUnlimited() bool { return l.unlimited }

// Value returns the ceiling and true for a bounded quota, or 0 and false.
func (l Limit) Value() (float64, bool) {
	if l.unlimited {
		return 0, false
	}
	return l.value, true
}

// Overage returns max(0, used - ceiling). Always 0 for an unlimited quota.
func (l Limit) Overage(used float64) float64 {
	if l.unlimited {
		return 0
	}
	return math.Max(0, used-l.value)
}

// Fraction returns used / ceiling. ok is false for an unlimited quota.
// A zero ceiling yields +Inf for positive usage and 0 otherwise.
func (l Limit) Fraction(used float64) (fraction float64, ok bool) {
	if l.unlimited {
		return 0, false
	}
	if l.value == 0 {
		if used > 0 {
			return math.Inf(1), true
		}
		return 0, true
	}
	return used / l.value, true
}

// String returns "unlimited" or the ceiling in shortest decimal form.
func (l Limit) String() string {
	if l.unlimited {
		return UnlimitedText
	}
	return strconv.FormatFloat(l.value, 'f', -1, 64)
}
