/*
settlement.go - One-time settlement of a PENDING/OVERDUE record

PURPOSE:
  Validates and applies a settlement (payment) to a single record. The
  final amount is ALWAYS re-derived server-side from the submitted charge
  fields - a client-precomputed total is never trusted.

TRANSACTIONALITY:
  Settle itself is a pure function: it returns the mutated copy plus the
  audit delta and touches nothing. The caller applies the outcome under
  the store's own atomicity guarantee; the store re-checks "status is
  still PENDING/OVERDUE" (compare-and-swap) so two concurrent settlements
  cannot both succeed. This engine holds no locks and does not retry.

SEE ALSO:
  - charges.go: ComputeFinalAmount
  - status.go: IsSettleable
  - store.go: RecordStore.ApplySettlement (the commit step)
*/
package finance

import (
	"strings"
	"time"
)

// =============================================================================
// SETTLEMENT REQUEST / OUTCOME
// =============================================================================

// Settlement carries the operator-confirmed inputs for settling a record.
type Settlement struct {
	PaymentDate   time.Time
	PaymentMethod string
	BankAccountID string

	// Charge fields as confirmed (or overridden) by the operator.
	Charges Charges
}

// SettlementOutcome is the complete result of a successful settlement:
// the updated record, and the delta and charge breakdown the caller
// needs for audit and display. The engine itself writes no logs.
type SettlementOutcome struct {
	Record    FinancialRecord
	Delta     Money // AmountFinal - Amount
	Breakdown ChargeBreakdown
}

func (s *Settlement) validate() error {
	if s.PaymentDate.IsZero() {
		return &ValidationError{Field: "paymentDate", Message: "is required"}
	}
	if strings.TrimSpace(s.PaymentMethod) == "" {
		return &ValidationError{Field: "paymentMethod", Message: "is required"}
	}
	if strings.TrimSpace(s.BankAccountID) == "" {
		return &ValidationError{Field: "bankAccountId", Message: "is required"}
	}
	return nil
}

// =============================================================================
// SETTLE
// =============================================================================

// Settle validates and applies a one-time settlement to the record,
// returning the mutations to persist. Either the whole outcome is applied
// by the caller or nothing changes; there is no partial-success path.
//
// Once a record is PAID its paymentDate and amountPaid are immutable
// through this engine: a second Settle call observes the PAID status and
// rejects with a state conflict, leaving both fields untouched.
func Settle(record *FinancialRecord, s Settlement, now time.Time) (*SettlementOutcome, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	if !IsSettleable(record.Status) {
		return nil, &StateConflictError{
			RecordID:  record.ID,
			Status:    record.Status,
			Operation: "settle",
		}
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	breakdown, err := ComputeFinalAmount(record.Amount, s.Charges)
	if err != nil {
		return nil, err
	}
	if !breakdown.AmountFinal.IsPositive() {
		return nil, &ValidationError{Field: "amountFinal", Message: "settlement amount must be positive"}
	}

	updated := *record
	paymentDate := TruncateToDay(s.PaymentDate)
	updated.Status = StatusPaid
	updated.PaymentDate = &paymentDate
	updated.PaymentMethod = s.PaymentMethod
	updated.BankAccountID = s.BankAccountID
	updated.Charges = s.Charges
	updated.AmountFinal = breakdown.AmountFinal
	updated.AmountPaid = breakdown.AmountFinal
	updated.UpdatedAt = now

	return &SettlementOutcome{
		Record:    updated,
		Delta:     breakdown.AmountFinal.Sub(record.Amount),
		Breakdown: breakdown,
	}, nil
}
