/*
charges.go - Charge calculation for fine, interest, correction and discount

PURPOSE:
  Computes the four charge dimensions of a record and the resulting final
  payable amount, and keeps the percentage and absolute-value
  representations of each charge mutually consistent.

COMPUTATION ORDER (binding for compatibility with existing records):
  1. total = amount + fine + interest + monetaryCorrection
  2. discount subtracts from the POST-CHARGE total; when expressed as a
     percentage it is computed against that total, not the bare principal
  3. amountFinal = max(0, total)

DEFAULT CHARGES:
  For late settlement the engine SUGGESTS fine = 2% of principal and
  interest = 1% per elapsed month, months = max(1, ceil(daysLate/30)).
  The suggestion is never applied silently; the operator confirms or
  overrides it before settlement.

SEE ALSO:
  - money.go: PercentOf / PercentFromValue and their rounding rules
  - settlement.go: Recomputes the final amount server-side at settle time
*/
package finance

import "time"

// =============================================================================
// DEFAULT CHARGE RATES
// =============================================================================

const (
	// DefaultFinePercent is the suggested late fine: 2% of principal.
	DefaultFinePercent = Percent(200)

	// DefaultMonthlyInterest is the suggested interest: 1% per elapsed
	// month, with months = max(1, ceil(daysLate/30)). This flat 30-day
	// approximation matches the historically computed values; changing it
	// to a calendar day-count needs sign-off from the financial rules
	// owner.
	DefaultMonthlyInterest = Percent(100)
)

// =============================================================================
// CHARGE SUGGESTION - Operator-facing default for late records
// =============================================================================

// ChargeSuggestion is the proposed fine and interest for a late record.
type ChargeSuggestion struct {
	Fine       Money
	Interest   Money
	DaysLate   int
	MonthsLate int
}

// SuggestDefaultCharges proposes fine and interest for settling a record
// at referenceDate. On-time or early settlement proposes zero for both.
func SuggestDefaultCharges(amount Money, dueDate, referenceDate time.Time) ChargeSuggestion {
	daysLate := DaysLate(dueDate, referenceDate)
	if daysLate <= 0 {
		return ChargeSuggestion{DaysLate: daysLate}
	}

	months := (daysLate + 29) / 30 // ceil(daysLate/30)
	if months < 1 {
		months = 1
	}

	return ChargeSuggestion{
		Fine:       PercentOf(amount, DefaultFinePercent),
		Interest:   PercentOf(amount, Percent(int64(months)*int64(DefaultMonthlyInterest))),
		DaysLate:   daysLate,
		MonthsLate: months,
	}
}

// =============================================================================
// PERCENT / VALUE SYNC - Bidirectional field editing
// =============================================================================

// SyncPercentToValue derives the absolute value of a charge from its
// percentage representation. Called whenever the operator edits the
// percent field of fine, interest, monetary correction or discount.
func SyncPercentToValue(base Money, percent Percent) Money {
	return PercentOf(base, percent)
}

// SyncValueToPercent derives the percentage representation from an edited
// absolute value. Inverse of SyncPercentToValue within one minor unit.
func SyncValueToPercent(base Money, value Money) Percent {
	return PercentFromValue(base, value)
}

// =============================================================================
// FINAL AMOUNT
// =============================================================================

// ChargeBreakdown is the audited result of a final-amount derivation.
// AppliedDiscount is the resolved discount actually subtracted, whichever
// representation was authoritative.
type ChargeBreakdown struct {
	Amount             Money
	Fine               Money
	Interest           Money
	MonetaryCorrection Money
	AppliedDiscount    Money
	AmountFinal        Money
}

// ValidateCharges rejects negative charge inputs before any computation.
func ValidateCharges(c Charges) error {
	switch {
	case c.Fine.IsNegative():
		return &ValidationError{Field: "fine", Message: "cannot be negative"}
	case c.Interest.IsNegative():
		return &ValidationError{Field: "interest", Message: "cannot be negative"}
	case c.MonetaryCorrection.IsNegative():
		return &ValidationError{Field: "monetaryCorrection", Message: "cannot be negative"}
	case c.Discount.IsNegative():
		return &ValidationError{Field: "discount", Message: "cannot be negative"}
	case c.DiscountPercent.IsNegative():
		return &ValidationError{Field: "discountPercent", Message: "cannot be negative"}
	}
	if c.DiscountType != "" && c.DiscountType != DiscountValue && c.DiscountType != DiscountPercentage {
		return &ValidationError{Field: "discountType", Message: "must be VALUE or PERCENTAGE"}
	}
	return nil
}

// ComputeFinalAmount derives the settlement-time payable total.
// Total functions over well-formed inputs: after validation there is no
// failure path, only the documented clamp at zero.
func ComputeFinalAmount(amount Money, c Charges) (ChargeBreakdown, error) {
	if amount.IsNegative() {
		return ChargeBreakdown{}, &ValidationError{Field: "amount", Message: "cannot be negative"}
	}
	if err := ValidateCharges(c); err != nil {
		return ChargeBreakdown{}, err
	}

	total := amount.Add(c.Fine).Add(c.Interest).Add(c.MonetaryCorrection)

	var applied Money
	if c.DiscountType == DiscountPercentage && !c.DiscountPercent.IsZero() {
		applied = PercentOf(total, c.DiscountPercent)
	} else if c.Discount.IsPositive() {
		applied = c.Discount
	}

	final := total.SubFloor(applied)
	if final.IsNegative() {
		// Unreachable given SubFloor; kept as a loud defect signal.
		return ChargeBreakdown{}, &InvariantViolationError{Op: "ComputeFinalAmount", Detail: "final amount below zero"}
	}

	return ChargeBreakdown{
		Amount:             amount,
		Fine:               c.Fine,
		Interest:           c.Interest,
		MonetaryCorrection: c.MonetaryCorrection,
		AppliedDiscount:    applied,
		AmountFinal:        final,
	}, nil
}
