/*
errors.go - Centralized error types for the infrastructure layers

PURPOSE:
  The calculators never fail: they degrade and attach Diagnostics. The layers
  around them (factory, store, api, config) do fail, and they share the error
  vocabulary defined here so the API can map failures to status codes.

ERROR CATEGORIES:
  1. Not found - Employee, roster or settlement missing from the store
  2. Validation - Malformed roster/config JSON, bad periods, bad input
  3. Store - Duplicate rows and persistence failures

USAGE:
  if errors.Is(err, generic.ErrEmployeeNotFound) {
      writeError(w, http.StatusNotFound, "Employee not found", err)
  }

SEE ALSO:
  - factory/roster.go: Returns ErrInvalidRoster
  - store/sqlite/sqlite.go: Returns ErrDuplicatePunch and not-found errors
  - api/handlers.go: Maps errors to HTTP statuses
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRosterNotFound is returned when a referenced roster doesn't exist.
	ErrRosterNotFound = errors.New("roster not found")

	// ErrSettlementNotFound is returned when no settlement was computed yet.
	ErrSettlementNotFound = errors.New("settlement not found")

	// ErrInvalidRoster is returned when a roster definition fails validation.
	ErrInvalidRoster = errors.New("invalid roster")

	// ErrInvalidConfig is returned when a calculator configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrDuplicatePunch is returned when a second punch record is stored for
	// the same employee and date. Corrections replace the record explicitly.
	ErrDuplicatePunch = errors.New("attendance already recorded for date")

	// ErrMonthAlreadyClosed is returned when a month-close run already completed.
	ErrMonthAlreadyClosed = errors.New("month already closed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError reports a single invalid field in a definition or request.
type FieldError struct {
	Field   string
	Message string
	Err     error // category sentinel, e.g. ErrInvalidRoster
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Err, e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRoster) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsConflict returns true if the error reports a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicatePunch) ||
		errors.Is(err, ErrMonthAlreadyClosed)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRosterNotFound) ||
		errors.Is(err, ErrSettlementNotFound)
}
