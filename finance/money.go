/*
Package finance implements the settlement and installment engine.

PURPOSE:
  This package contains the core monetary types and algorithms for the
  financial side of the office suite: charge calculation (fine, interest,
  monetary correction, discount), exact installment splitting, and the
  payment-status state machine with one-way settlement.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: An amount in integer minor units (cents). Never a float.
  - Percent: A percentage with 2-decimal precision, held as basis points.
  - Round-half-up division, applied only on the final division step.

DESIGN PRINCIPLES:
  1. Precision: All arithmetic is integer arithmetic; decimal.Decimal is
     used only at the boundary to parse and format caller-supplied strings.
  2. Explicit rounding: Exactly one rounding point per derivation.
  3. Explicit clamping: Sub never clamps; SubFloor exists for the callers
     that require non-negative results (the final payable amount).

USAGE:
  amount, err := finance.ParseMoney("1000.00") // 100000 minor units
  fine := finance.PercentOf(amount, finance.Percent(200)) // 2% -> 20.00

SEE ALSO:
  - charges.go: Charge calculation built on these primitives
  - installments.go: Exact splitting of a Money total
*/
package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Integer minor currency units (cents)
// =============================================================================

// Money is an amount in minor currency units. The zero value is zero money.
type Money int64

// Add returns a + b. Exact, no rounding.
func (m Money) Add(o Money) Money { return m + o }

// Sub returns a - b. Exact, may go negative.
func (m Money) Sub(o Money) Money { return m - o }

// SubFloor returns a - b clamped at zero. Used for the final payable
// amount, where charges cannot drive the total negative.
func (m Money) SubFloor(o Money) Money {
	r := m - o
	if r < 0 {
		return 0
	}
	return r
}

func (m Money) Neg() Money        { return -m }
func (m Money) IsZero() bool      { return m == 0 }
func (m Money) IsNegative() bool  { return m < 0 }
func (m Money) IsPositive() bool  { return m > 0 }
func (m Money) LessThan(o Money) bool    { return m < o }
func (m Money) GreaterThan(o Money) bool { return m > o }

// Decimal returns the amount as a decimal value in major units.
func (m Money) Decimal() decimal.Decimal { return decimal.New(int64(m), -2) }

// String formats the amount with exactly two decimal places, e.g. "1030.00".
func (m Money) String() string { return m.Decimal().StringFixed(2) }

// ParseMoney parses a caller-supplied decimal string into minor units.
// At most two decimal places are accepted; money never passes through a
// binary float.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Message: fmt.Sprintf("invalid monetary value %q", s)}
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, &ValidationError{Field: "amount", Message: fmt.Sprintf("%q has more than 2 decimal places", s)}
	}
	return Money(shifted.IntPart()), nil
}

// MustParseMoney is a test helper. Panics on malformed input.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// =============================================================================
// PERCENT - Two-decimal percentage, held as basis points
// =============================================================================

// Percent is a percentage with 2-decimal precision stored as an integer
// scaled by 100 (basis points): 2.50% == Percent(250). Integer storage
// avoids float drift when the UI round-trips percent and value fields.
type Percent int64

func (p Percent) IsZero() bool     { return p == 0 }
func (p Percent) IsNegative() bool { return p < 0 }

// Decimal returns the percentage as a decimal, e.g. Percent(250) -> 2.5.
func (p Percent) Decimal() decimal.Decimal { return decimal.New(int64(p), -2) }

// String formats with two decimal places, e.g. "2.50".
func (p Percent) String() string { return p.Decimal().StringFixed(2) }

// ParsePercent parses a percentage string with up to two decimal places.
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &ValidationError{Field: "percent", Message: fmt.Sprintf("invalid percentage %q", s)}
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, &ValidationError{Field: "percent", Message: fmt.Sprintf("%q has more than 2 decimal places", s)}
	}
	return Percent(shifted.IntPart()), nil
}

// =============================================================================
// PERCENT <-> VALUE CONVERSIONS
// =============================================================================

// PercentOf returns round(base * percent / 100) with round-half-up on the
// final division. With percent in basis points the divisor is 10000.
func PercentOf(base Money, p Percent) Money {
	return Money(roundHalfUpDiv(int64(base)*int64(p), 10000))
}

// PercentFromValue is the exact inverse used to keep UI-editable
// percent/value pairs synchronized: round(value / base * 10000) / 100,
// i.e. a 2-decimal percentage. Returns 0 when base is zero.
//
// Round-tripping value -> percent -> value may differ from the original
// value by at most one minor unit. That bound is a documented property,
// not a bug.
func PercentFromValue(base, value Money) Percent {
	if base == 0 {
		return 0
	}
	return Percent(roundHalfUpDiv(int64(value)*10000, int64(base)))
}

// roundHalfUpDiv divides num by den rounding half away from zero.
// den must be positive.
func roundHalfUpDiv(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}
