package finance

import "time"

// =============================================================================
// RECORD TYPE / STATUS / ENUMS
// =============================================================================

// RecordType distinguishes money coming in from money going out.
type RecordType string

const (
	TypeIncome  RecordType = "INCOME"
	TypeExpense RecordType = "EXPENSE"
)

func (t RecordType) Valid() bool { return t == TypeIncome || t == TypeExpense }

// RecordStatus is the lifecycle status of a financial record.
// OVERDUE is a derived presentation status (see status.go); it is never
// written by this engine, only projected on the read path.
type RecordStatus string

const (
	StatusPending   RecordStatus = "PENDING"
	StatusPartial   RecordStatus = "PARTIAL"
	StatusPaid      RecordStatus = "PAID"
	StatusOverdue   RecordStatus = "OVERDUE"
	StatusCancelled RecordStatus = "CANCELLED"
)

// DiscountType selects which representation of the discount is authoritative
// at settlement time.
type DiscountType string

const (
	DiscountValue      DiscountType = "VALUE"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// Periodicity is the cadence used to space installment due dates.
type Periodicity string

const (
	PeriodicityWeekly   Periodicity = "WEEKLY"
	PeriodicityBiweekly Periodicity = "BIWEEKLY"
	PeriodicityMonthly  Periodicity = "MONTHLY"
)

func (p Periodicity) Valid() bool {
	switch p {
	case PeriodicityWeekly, PeriodicityBiweekly, PeriodicityMonthly:
		return true
	}
	return false
}

// =============================================================================
// CHARGES - The four charge dimensions of a record
// =============================================================================

// Charges carries the charge fields of a record. Fine, Interest and
// MonetaryCorrection are absolute values. Discount keeps both
// representations; DiscountType says which one applies at settlement.
// The two are kept consistent within rounding tolerance by the sync
// operations in charges.go.
type Charges struct {
	Fine               Money
	Interest           Money
	MonetaryCorrection Money
	Discount           Money
	DiscountPercent    Percent
	DiscountType       DiscountType
}

// =============================================================================
// RELATIONAL ATTACHMENTS - Read by this engine, never computed
// =============================================================================

// PartyRole links a contact to a record as creditor or debtor.
type PartyRole string

const (
	RoleCreditor PartyRole = "CREDITOR"
	RoleDebtor   PartyRole = "DEBTOR"
)

// Party is a creditor/debtor link with an optional per-party amount.
type Party struct {
	ContactID string
	Role      PartyRole
	Amount    *Money
}

// Split is a rateio entry allocating part of the record amount to a contact.
type Split struct {
	ContactID string
	Amount    Money
	Percent   *Percent
}

// =============================================================================
// FINANCIAL RECORD - The central entity
// =============================================================================

// FinancialRecord is a single receivable or payable. It is created either
// ad hoc or as one member of an installment family, previewed through the
// charge calculator, and settled exactly once.
type FinancialRecord struct {
	ID string

	// Economic fields
	Description   string
	Category      string
	Type          RecordType
	Amount        Money // original/principal
	DueDate       time.Time
	PaymentDate   *time.Time // set only on settlement
	PaymentMethod string
	BankAccountID string

	Charges Charges

	// Derived at settlement
	AmountFinal Money
	AmountPaid  Money

	Status RecordStatus

	// Installment linkage (zero values for ad-hoc records)
	ParentID          string
	InstallmentNumber int
	TotalInstallments int
	Periodicity       Periodicity
	IsResidual        bool

	// Attachments owned by this record; validated, never mutated here
	Parties []Party
	Splits  []Split

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the invariants a record must satisfy before any charge
// computation or settlement runs. Detected problems are ValidationErrors;
// nothing is mutated.
func (r *FinancialRecord) Validate() error {
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if err := ValidateCharges(r.Charges); err != nil {
		return err
	}
	return r.validateAttachments()
}

// validateAttachments checks that per-party amounts and split amounts do
// not exceed the record amount. The engine only reads attachments; the
// allocations themselves are computed elsewhere.
func (r *FinancialRecord) validateAttachments() error {
	var partyTotal Money
	for _, p := range r.Parties {
		if p.Amount == nil {
			continue
		}
		if p.Amount.IsNegative() {
			return &ValidationError{Field: "parties", Message: "party amount cannot be negative"}
		}
		partyTotal = partyTotal.Add(*p.Amount)
	}
	if partyTotal.GreaterThan(r.Amount) {
		return &ValidationError{Field: "parties", Message: "party amounts exceed record amount"}
	}

	var splitTotal Money
	for _, s := range r.Splits {
		if s.Amount.IsNegative() {
			return &ValidationError{Field: "splits", Message: "split amount cannot be negative"}
		}
		splitTotal = splitTotal.Add(s.Amount)
	}
	if splitTotal.GreaterThan(r.Amount) {
		return &ValidationError{Field: "splits", Message: "split amounts exceed record amount"}
	}
	return nil
}
