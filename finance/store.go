/*
store.go - Persistence interfaces for records and settlement audit

PURPOSE:
  Defines the boundary between the engine and the storage layer. The
  engine computes; the store commits. Two operations carry the engine's
  correctness requirements into the database:

  SaveBatch:        An installment family is persisted all-or-nothing. A
                    partially persisted plan would break the sum invariant
                    from a reader's perspective.
  ApplySettlement:  The commit step of Settle. The store MUST re-check
                    that the record status is still PENDING or OVERDUE
                    (compare-and-swap) so that at most one concurrent
                    settlement per record succeeds. On conflict it reports
                    ErrStateConflict and lets the caller decide.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite (WAL)
  - finance/store/memory.go: In-memory for testing

SEE ALSO:
  - settlement.go: Produces the SettlementOutcome this store applies
*/
package finance

import (
	"context"
	"time"
)

// =============================================================================
// RECORD STORE
// =============================================================================

// RecordFilter narrows List results. Nil fields match everything.
// Status filtering matches the PERSISTED status; derived OVERDUE is a
// read-path projection the caller applies via EffectiveStatus.
type RecordFilter struct {
	Status   *RecordStatus
	Type     *RecordType
	ParentID *string
}

// RecordStore persists financial records.
type RecordStore interface {
	// Save inserts a single ad-hoc record.
	Save(ctx context.Context, rec FinancialRecord) error

	// SaveBatch inserts an installment family atomically.
	// Either all records are persisted or none are.
	SaveBatch(ctx context.Context, recs []FinancialRecord) error

	// Get returns a record by ID, or ErrRecordNotFound.
	Get(ctx context.Context, id string) (*FinancialRecord, error)

	// List returns records matching the filter, ordered by due date then
	// installment number.
	List(ctx context.Context, filter RecordFilter) ([]FinancialRecord, error)

	// ApplySettlement commits a settlement outcome. The update is guarded
	// by a status check (PENDING/OVERDUE at commit time); a record already
	// PAID, PARTIAL or CANCELLED yields a StateConflictError and no change.
	ApplySettlement(ctx context.Context, outcome SettlementOutcome) error

	// Cancel marks a record CANCELLED. Guarded the same way: PAID and
	// already-CANCELLED records yield a StateConflictError.
	Cancel(ctx context.Context, id string, now time.Time) error
}

// =============================================================================
// AUDIT LOG - Written by the caller from the settlement outcome
// =============================================================================

// AuditAction identifies what happened to a record.
type AuditAction string

const (
	AuditSettled   AuditAction = "settled"
	AuditCancelled AuditAction = "cancelled"
	AuditPlanned   AuditAction = "plan_created"
)

// AuditEntry records the delta and charge breakdown of a settlement (or
// another lifecycle event) for later inspection. Append-only.
type AuditEntry struct {
	ID       string
	RecordID string
	Action   AuditAction
	ActorID  string
	At       time.Time

	// Settlement details; zero for non-settlement actions.
	Delta              Money
	Fine               Money
	Interest           Money
	MonetaryCorrection Money
	AppliedDiscount    Money
	AmountFinal        Money
}

// AuditLog stores audit entries. Append-only: no update, no delete.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	ByRecord(ctx context.Context, recordID string) ([]AuditEntry, error)
}
