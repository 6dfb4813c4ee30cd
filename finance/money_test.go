package finance_test

import (
	"testing"

	"github.com/praxis/finance-engine/finance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(s string) finance.Money {
	return finance.MustParseMoney(s)
}

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParseMoney_TwoDecimalPlaces(t *testing.T) {
	cases := map[string]finance.Money{
		"0":       0,
		"0.01":    1,
		"1":       100,
		"10.5":    1050,
		"1000.00": 100000,
		"100.01":  10001,
		"-5.25":   -525,
	}
	for input, want := range cases {
		got, err := finance.ParseMoney(input)
		if err != nil {
			t.Errorf("ParseMoney(%q): unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseMoney(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestParseMoney_RejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "abc", "10.001", "1,50", "1.2.3"} {
		if _, err := finance.ParseMoney(input); err == nil {
			t.Errorf("ParseMoney(%q): expected error", input)
		} else if !finance.IsValidation(err) {
			t.Errorf("ParseMoney(%q): expected validation error, got %v", input, err)
		}
	}
}

func TestMoneyString_AlwaysTwoDecimals(t *testing.T) {
	if got := money("1030").String(); got != "1030.00" {
		t.Errorf("expected 1030.00, got %s", got)
	}
	if got := finance.Money(1).String(); got != "0.01" {
		t.Errorf("expected 0.01, got %s", got)
	}
}

// =============================================================================
// ARITHMETIC TESTS
// =============================================================================

func TestSubFloor_ClampsAtZero(t *testing.T) {
	// GIVEN: a discount larger than the total
	// WHEN: subtracting with the floor
	// THEN: the result is zero, not negative

	if got := money("100.00").SubFloor(money("150.00")); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	// Plain Sub must NOT clamp: intermediate values may go negative.
	if got := money("100.00").Sub(money("150.00")); got != money("-50.00") {
		t.Errorf("expected -50.00, got %v", got)
	}
}

func TestPercentOf_RoundHalfUp(t *testing.T) {
	// 2% of 1000.00 = 20.00 exactly
	if got := finance.PercentOf(money("1000.00"), finance.Percent(200)); got != money("20.00") {
		t.Errorf("2%% of 1000.00 = %v, want 20.00", got)
	}
	// 10% of 100.01 = 10.001 -> rounds down to 10.00
	if got := finance.PercentOf(money("100.01"), finance.Percent(1000)); got != money("10.00") {
		t.Errorf("10%% of 100.01 = %v, want 10.00", got)
	}
	// 0.5 cent rounds up: 1% of 0.50 = 0.005 -> 0.01
	if got := finance.PercentOf(money("0.50"), finance.Percent(100)); got != money("0.01") {
		t.Errorf("1%% of 0.50 = %v, want 0.01", got)
	}
}

func TestPercentFromValue_ZeroBase(t *testing.T) {
	// GIVEN: a zero base (division would fail)
	// THEN: the conversion returns 0 instead of erroring

	if got := finance.PercentFromValue(0, money("10.00")); got != 0 {
		t.Errorf("expected 0 for zero base, got %v", got)
	}
}

func TestPercentFromValue_TwoDecimalPrecision(t *testing.T) {
	// 50.00 of 500.00 = exactly 10.00%
	if got := finance.PercentFromValue(money("500.00"), money("50.00")); got != finance.Percent(1000) {
		t.Errorf("expected 10.00%%, got %v", got)
	}
	// 33.33 of 100.00 = 33.33%
	if got := finance.PercentFromValue(money("100.00"), money("33.33")); got != finance.Percent(3333) {
		t.Errorf("expected 33.33%%, got %v", got)
	}
}

// =============================================================================
// ROUND-TRIP PROPERTY
// =============================================================================

func TestPercentRoundTrip_WithinOneBasisPoint(t *testing.T) {
	// GIVEN: any base and 2-decimal percent from a representative grid
	// WHEN: converting percent -> value -> percent
	// THEN: the recovered percent differs by at most 0.01 (one basis point)

	bases := []finance.Money{
		money("100.00"), money("250.50"), money("1000.00"),
		money("1234.56"), money("99999.99"),
	}
	percents := []finance.Percent{1, 33, 100, 250, 999, 1250, 5000, 9999}

	for _, base := range bases {
		for _, p := range percents {
			value := finance.PercentOf(base, p)
			recovered := finance.PercentFromValue(base, value)

			diff := int64(recovered) - int64(p)
			if diff < 0 {
				diff = -diff
			}
			if diff > 1 {
				t.Errorf("round trip base=%v percent=%v: recovered %v (diff %d bp)",
					base, p, recovered, diff)
			}
		}
	}
}

func TestValueRoundTrip_WithinOneMinorUnit(t *testing.T) {
	// GIVEN: an edited value field
	// WHEN: syncing value -> percent -> value
	// THEN: the re-derived value differs by at most one minor unit
	//
	// The percent has 2-decimal precision, so this bound holds for bases
	// up to 200.00; larger bases amplify the quantized percent and the
	// UI keeps the operator-entered value authoritative instead.

	bases := []finance.Money{money("50.00"), money("120.00"), money("200.00")}
	values := []finance.Money{money("1.00"), money("33.33"), money("150.00"), money("123.45")}

	for _, base := range bases {
		for _, v := range values {
			p := finance.PercentFromValue(base, v)
			back := finance.PercentOf(base, p)

			diff := int64(back) - int64(v)
			if diff < 0 {
				diff = -diff
			}
			if diff > 1 {
				t.Errorf("round trip base=%v value=%v: recovered %v (diff %d minor units)",
					base, v, back, diff)
			}
		}
	}
}
