/*
installments.go - Exact splitting of a total into an installment family

PURPOSE:
  Splits a total amount into N draft records without losing or fabricating
  a single minor currency unit. The first N-1 installments get the floored
  base amount; the last one absorbs the remainder and is flagged residual.

SUM INVARIANT:
  sum(installment amounts) == total, exactly, for every total and count.
  The planner re-checks this before returning and fails loudly if a split
  ever leaks a cent - that is a defect signal, not a user error.

DUE DATES:
  Weekly and biweekly steps are fixed 7/14-day offsets. Monthly steps are
  calendar-month arithmetic anchored to the first due date's day-of-month,
  clamped to the last valid day of the target month (Jan 31 -> Feb 29 ->
  Mar 31). Never a fixed 30-day offset.

SEE ALSO:
  - dates.go: AddMonthsClamped
  - store.go: SaveBatch persists the family atomically
*/
package finance

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// PLAN INPUT
// =============================================================================

// PlanInput describes an installment plan to materialize. The metadata
// fields are shared by every installment in the family.
type PlanInput struct {
	TotalAmount     Money
	NumInstallments int
	Periodicity     Periodicity
	FirstDueDate    time.Time

	Description   string
	Category      string
	Type          RecordType
	BankAccountID string
	PaymentMethod string

	// ParentID identifies the owning plan; minted when empty.
	ParentID string
}

func (in *PlanInput) validate() error {
	if in.NumInstallments < 2 {
		return &ValidationError{Field: "numInstallments", Message: "must be at least 2"}
	}
	if !in.TotalAmount.IsPositive() {
		return &ValidationError{Field: "totalAmount", Message: "must be positive"}
	}
	if !in.Periodicity.Valid() {
		return &ValidationError{Field: "periodicity", Message: "must be WEEKLY, BIWEEKLY or MONTHLY"}
	}
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Message: "must be INCOME or EXPENSE"}
	}
	if in.FirstDueDate.IsZero() {
		return &ValidationError{Field: "firstDueDate", Message: "is required"}
	}
	return nil
}

// =============================================================================
// PLANNER
// =============================================================================

// Plan materializes the ordered installment family for the given input.
// The returned records are drafts: the caller persists them as a single
// atomic batch (all-or-nothing), since a partially persisted plan would
// break the sum invariant for readers.
func Plan(in PlanInput, now time.Time) ([]FinancialRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	parentID := in.ParentID
	if parentID == "" {
		parentID = uuid.NewString()
	}

	n := in.NumInstallments
	base := Money(int64(in.TotalAmount) / int64(n))
	remainder := in.TotalAmount.Sub(Money(int64(base) * int64(n)))

	first := TruncateToDay(in.FirstDueDate)
	records := make([]FinancialRecord, 0, n)
	var sum Money

	for k := 1; k <= n; k++ {
		amount := base
		residual := false
		if k == n {
			amount = base.Add(remainder)
			residual = !remainder.IsZero()
		}

		records = append(records, FinancialRecord{
			ID:                uuid.NewString(),
			Description:       in.Description,
			Category:          in.Category,
			Type:              in.Type,
			Amount:            amount,
			DueDate:           dueDateFor(first, k, in.Periodicity),
			PaymentMethod:     in.PaymentMethod,
			BankAccountID:     in.BankAccountID,
			Status:            StatusPending,
			ParentID:          parentID,
			InstallmentNumber: k,
			TotalInstallments: n,
			Periodicity:       in.Periodicity,
			IsResidual:        residual,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		sum = sum.Add(amount)
	}

	if sum != in.TotalAmount {
		return nil, &InvariantViolationError{
			Op:     "Plan",
			Detail: "installment amounts do not sum to the total",
		}
	}
	return records, nil
}

// dueDateFor returns the due date of installment k (1-based). Monthly
// stepping is always anchored to the FIRST due date, so a Jan 31 start
// yields Feb 29 then Mar 31, not a chain that collapses to day 29.
func dueDateFor(first time.Time, k int, p Periodicity) time.Time {
	switch p {
	case PeriodicityWeekly:
		return first.AddDate(0, 0, 7*(k-1))
	case PeriodicityBiweekly:
		return first.AddDate(0, 0, 14*(k-1))
	default: // monthly; validated upstream
		return AddMonthsClamped(first, k-1)
	}
}
