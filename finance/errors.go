/*
errors.go - Centralized error types for the finance engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  The API layer maps these to HTTP statuses; nothing in this package
  swallows an error and substitutes a default silently. The only
  documented clamp is max(0, amountFinal), which is a business rule,
  not error suppression.

ERROR CATEGORIES:
  1. Validation errors  - malformed or out-of-range input, detected
                          before any mutation, never retried
  2. State conflicts    - the record's status forbids the operation;
                          the caller decides whether to refresh and retry
  3. Invariant violations - internal defect signals (a split that lost a
                          cent, a negative final amount); fail loudly

USAGE:
  if finance.IsStateConflict(err) {
      // 409, prompt operator to refresh the record
  }
*/
package finance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input-validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrStateConflict is returned when an operation is requested against
	// a record whose status forbids it (settling a PAID record, cancelling
	// a PAID record, re-settling).
	ErrStateConflict = errors.New("record status forbids operation")

	// ErrInvariantViolation signals a programming defect: an installment
	// split or charge computation would violate sum preservation or
	// non-negativity. Never a user-facing condition.
	ErrInvariantViolation = errors.New("arithmetic invariant violated")

	// ErrRecordNotFound is returned by stores for unknown record IDs.
	ErrRecordNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a field-level input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StateConflictError reports an operation rejected by the status machine.
type StateConflictError struct {
	RecordID  string
	Status    RecordStatus
	Operation string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s record %s in status %s", e.Operation, e.RecordID, e.Status)
}

func (e *StateConflictError) Unwrap() error { return ErrStateConflict }

// InvariantViolationError carries the detail of a defensive check failure.
type InvariantViolationError struct {
	Op     string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true for malformed-input errors (HTTP 400).
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsStateConflict returns true when the record's status forbade the
// operation (HTTP 409). The caller may refresh and retry.
func IsStateConflict(err error) bool { return errors.Is(err, ErrStateConflict) }

// IsInvariantViolation returns true for internal defect signals.
func IsInvariantViolation(err error) bool { return errors.Is(err, ErrInvariantViolation) }

// IsNotFound returns true for unknown-record errors (HTTP 404).
func IsNotFound(err error) bool { return errors.Is(err, ErrRecordNotFound) }
