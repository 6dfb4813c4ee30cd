/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

MONEY AT THE BOUNDARY:
  Every monetary field is a decimal STRING ("1030.00"), parsed once into
  integer minor units on the way in and formatted once on the way out.
  Percentages likewise ("2.50"). No float ever carries money.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - finance/money.go: ParseMoney / ParsePercent
*/
package api

import (
	"time"

	"github.com/praxis/finance-engine/finance"
)

// =============================================================================
// CHARGES
// =============================================================================

// ChargesDTO carries the four charge dimensions. Empty strings mean zero.
type ChargesDTO struct {
	Fine               string `json:"fine,omitempty"`
	Interest           string `json:"interest,omitempty"`
	MonetaryCorrection string `json:"monetary_correction,omitempty"`
	Discount           string `json:"discount,omitempty"`
	DiscountPercent    string `json:"discount_percent,omitempty"`
	DiscountType       string `json:"discount_type,omitempty"`
}

func (c ChargesDTO) toDomain() (finance.Charges, error) {
	var out finance.Charges
	var err error

	parse := func(field, s string) (finance.Money, error) {
		if s == "" {
			return 0, nil
		}
		m, err := finance.ParseMoney(s)
		if err != nil {
			return 0, &finance.ValidationError{Field: field, Message: "invalid monetary value"}
		}
		return m, nil
	}

	if out.Fine, err = parse("fine", c.Fine); err != nil {
		return out, err
	}
	if out.Interest, err = parse("interest", c.Interest); err != nil {
		return out, err
	}
	if out.MonetaryCorrection, err = parse("monetary_correction", c.MonetaryCorrection); err != nil {
		return out, err
	}
	if out.Discount, err = parse("discount", c.Discount); err != nil {
		return out, err
	}
	if c.DiscountPercent != "" {
		if out.DiscountPercent, err = finance.ParsePercent(c.DiscountPercent); err != nil {
			return out, &finance.ValidationError{Field: "discount_percent", Message: "invalid percentage"}
		}
	}
	out.DiscountType = finance.DiscountType(c.DiscountType)
	return out, nil
}

func chargesDTO(c finance.Charges) ChargesDTO {
	dto := ChargesDTO{DiscountType: string(c.DiscountType)}
	if !c.Fine.IsZero() {
		dto.Fine = c.Fine.String()
	}
	if !c.Interest.IsZero() {
		dto.Interest = c.Interest.String()
	}
	if !c.MonetaryCorrection.IsZero() {
		dto.MonetaryCorrection = c.MonetaryCorrection.String()
	}
	if !c.Discount.IsZero() {
		dto.Discount = c.Discount.String()
	}
	if !c.DiscountPercent.IsZero() {
		dto.DiscountPercent = c.DiscountPercent.String()
	}
	return dto
}

// =============================================================================
// RECORDS
// =============================================================================

// RecordDTO represents a financial record in API responses. Status is the
// DERIVED status: a pending record past its due date reads as OVERDUE.
type RecordDTO struct {
	ID                string     `json:"id"`
	Description       string     `json:"description,omitempty"`
	Category          string     `json:"category,omitempty"`
	Type              string     `json:"type"`
	Amount            string     `json:"amount"`
	DueDate           string     `json:"due_date"`
	PaymentDate       *string    `json:"payment_date,omitempty"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	BankAccountID     string     `json:"bank_account_id,omitempty"`
	Charges           ChargesDTO `json:"charges"`
	AmountFinal       string     `json:"amount_final,omitempty"`
	AmountPaid        string     `json:"amount_paid,omitempty"`
	Status            string     `json:"status"`
	ParentID          string     `json:"parent_id,omitempty"`
	InstallmentNumber int        `json:"installment_number,omitempty"`
	TotalInstallments int        `json:"total_installments,omitempty"`
	Periodicity       string     `json:"periodicity,omitempty"`
	IsResidual        bool       `json:"is_residual,omitempty"`
	CreatedAt         string     `json:"created_at,omitempty"`
}

func recordDTO(r finance.FinancialRecord, asOf time.Time) RecordDTO {
	dto := RecordDTO{
		ID:                r.ID,
		Description:       r.Description,
		Category:          r.Category,
		Type:              string(r.Type),
		Amount:            r.Amount.String(),
		DueDate:           r.DueDate.Format("2006-01-02"),
		PaymentMethod:     r.PaymentMethod,
		BankAccountID:     r.BankAccountID,
		Charges:           chargesDTO(r.Charges),
		Status:            string(finance.EffectiveStatus(&r, asOf)),
		ParentID:          r.ParentID,
		InstallmentNumber: r.InstallmentNumber,
		TotalInstallments: r.TotalInstallments,
		Periodicity:       string(r.Periodicity),
		IsResidual:        r.IsResidual,
	}
	if r.PaymentDate != nil {
		pd := r.PaymentDate.Format("2006-01-02")
		dto.PaymentDate = &pd
	}
	if !r.AmountFinal.IsZero() {
		dto.AmountFinal = r.AmountFinal.String()
	}
	if !r.AmountPaid.IsZero() {
		dto.AmountPaid = r.AmountPaid.String()
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// CreateRecordRequest creates a single ad-hoc record.
type CreateRecordRequest struct {
	ID            string `json:"id,omitempty"`
	Description   string `json:"description"`
	Category      string `json:"category,omitempty"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	DueDate       string `json:"due_date"`
	BankAccountID string `json:"bank_account_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// =============================================================================
// PLANS
// =============================================================================

// CreatePlanRequest materializes an installment family.
type CreatePlanRequest struct {
	TotalAmount     string `json:"total_amount"`
	NumInstallments int    `json:"num_installments"`
	Periodicity     string `json:"periodicity"`
	FirstDueDate    string `json:"first_due_date"`
	Description     string `json:"description"`
	Category        string `json:"category,omitempty"`
	Type            string `json:"type"`
	BankAccountID   string `json:"bank_account_id,omitempty"`
	PaymentMethod   string `json:"payment_method,omitempty"`
}

// PlanDTO is the created family.
type PlanDTO struct {
	ParentID     string      `json:"parent_id"`
	TotalAmount  string      `json:"total_amount"`
	Installments []RecordDTO `json:"installments"`
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// SettleRequest settles a record. Charge fields are the operator-confirmed
// values; the final amount is recomputed server-side and never accepted
// from the client.
type SettleRequest struct {
	PaymentDate   string     `json:"payment_date"`
	PaymentMethod string     `json:"payment_method"`
	BankAccountID string     `json:"bank_account_id"`
	Charges       ChargesDTO `json:"charges"`
	ActorID       string     `json:"actor_id,omitempty"`
}

// SettleResponse returns the updated record plus the audit delta.
type SettleResponse struct {
	Record RecordDTO    `json:"record"`
	Delta  string       `json:"delta"`
	Detail BreakdownDTO `json:"breakdown"`
}

// BreakdownDTO is the charge breakdown used for the final amount.
type BreakdownDTO struct {
	Amount             string `json:"amount"`
	Fine               string `json:"fine"`
	Interest           string `json:"interest"`
	MonetaryCorrection string `json:"monetary_correction"`
	AppliedDiscount    string `json:"applied_discount"`
	AmountFinal        string `json:"amount_final"`
}

func breakdownDTO(b finance.ChargeBreakdown) BreakdownDTO {
	return BreakdownDTO{
		Amount:             b.Amount.String(),
		Fine:               b.Fine.String(),
		Interest:           b.Interest.String(),
		MonetaryCorrection: b.MonetaryCorrection.String(),
		AppliedDiscount:    b.AppliedDiscount.String(),
		AmountFinal:        b.AmountFinal.String(),
	}
}

// =============================================================================
// CHARGE PREVIEW
// =============================================================================

// PreviewRequest previews charges as the operator edits the form.
// ReferenceDate defaults to today.
type PreviewRequest struct {
	Amount        string     `json:"amount"`
	DueDate       string     `json:"due_date"`
	ReferenceDate string     `json:"reference_date,omitempty"`
	Charges       ChargesDTO `json:"charges"`
}

// PreviewResponse carries the suggestion and the resulting final amount.
type PreviewResponse struct {
	DaysLate          int          `json:"days_late"`
	MonthsLate        int          `json:"months_late"`
	SuggestedFine     string       `json:"suggested_fine"`
	SuggestedInterest string       `json:"suggested_interest"`
	Breakdown         BreakdownDTO `json:"breakdown"`
}

// =============================================================================
// AUDIT
// =============================================================================

// AuditEntryDTO is one audit-trail row.
type AuditEntryDTO struct {
	ID          string `json:"id"`
	RecordID    string `json:"record_id"`
	Action      string `json:"action"`
	ActorID     string `json:"actor_id,omitempty"`
	At          string `json:"at"`
	Delta       string `json:"delta"`
	AmountFinal string `json:"amount_final"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
