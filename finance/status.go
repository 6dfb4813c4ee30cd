/*
status.go - The authoritative lifecycle state machine for a record

PURPOSE:
  One definition of every legal status transition and one definition of
  "overdue", shared by every call site. OVERDUE is a derived presentation
  status: a persisted PENDING record whose due date has passed is
  displayed and treated as OVERDUE on the read path, without any
  background job mutating the stored value.

TRANSITIONS:
  PENDING  -> OVERDUE (derived), PARTIAL, PAID, CANCELLED
  OVERDUE  -> PARTIAL, PAID, CANCELLED
  PARTIAL  -> PAID, CANCELLED
  PAID     -> (terminal)
  CANCELLED-> (terminal)

  PARTIAL is reachable only through an external partial-payment operation;
  this engine tolerates it (rejects settlement against it) but never
  produces it. Only Settle drives PENDING/OVERDUE -> PAID.
*/
package finance

import "time"

// =============================================================================
// TRANSITION TABLE
// =============================================================================

var transitions = map[RecordStatus][]RecordStatus{
	StatusPending:   {StatusOverdue, StatusPartial, StatusPaid, StatusCancelled},
	StatusOverdue:   {StatusPartial, StatusPaid, StatusCancelled},
	StatusPartial:   {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to RecordStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist.
func IsTerminal(s RecordStatus) bool { return len(transitions[s]) == 0 }

// IsSettleable reports whether Settle may run against this status.
// OVERDUE is included because callers may hand back the derived value.
func IsSettleable(s RecordStatus) bool {
	return s == StatusPending || s == StatusOverdue
}

// IsCancellable reports whether the external cancel operation applies.
// Any non-PAID, non-CANCELLED status can be cancelled.
func IsCancellable(s RecordStatus) bool {
	return CanTransition(s, StatusCancelled)
}

// =============================================================================
// DERIVED OVERDUE - The single read-path rule
// =============================================================================

// EffectiveStatus projects the presentation status of a record as of the
// given date. A persisted PENDING record with daysLate > 0 is OVERDUE;
// every other status passes through unchanged.
func EffectiveStatus(r *FinancialRecord, asOf time.Time) RecordStatus {
	if r.Status == StatusPending && DaysLate(r.DueDate, asOf) > 0 {
		return StatusOverdue
	}
	return r.Status
}
