/*
errors.go - Centralized error types for the calculation engine

PURPOSE:
  All engine errors in one place. Every error is raised before any partial
  result is constructed: a request either fails entirely or succeeds with a
  complete CalculationResult. Non-fatal findings are Warnings on the result,
  never errors.

ERROR CATEGORIES:
  1. Validation errors - malformed requests (caller error, never retried)
  2. Rate errors - requested date precedes the embedded rate history
  3. Mode parameter errors - mode-specific field omitted or contradicted

The offending field, date or term is carried verbatim on the structured
types because these are legally meaningful parameters: the caller surfaces
them to a human reviewer as-is.

USAGE:
  if errors.Is(err, engine.ErrRateNotFound) {
      var rnf *engine.RateNotFoundError
      errors.As(err, &rnf) // rnf.Term, rnf.Date, rnf.Earliest
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all request-shape failures.
	ErrValidation = errors.New("invalid calculation request")

	// ErrRateNotFound is returned when a date precedes the earliest
	// embedded rate entry for a term. There is no backward extrapolation.
	ErrRateNotFound = errors.New("rate not found")

	// ErrInvalidPaymentDate is returned when a payment falls outside the
	// calculation range or payments are out of order.
	ErrInvalidPaymentDate = errors.New("invalid payment date")

	// ErrMissingCycle is returned when compound mode is requested without a
	// compounding cycle. Compounding is never inferred.
	ErrMissingCycle = errors.New("compounding cycle required")

	// ErrInvalidParameter is returned when a field is supplied that the
	// selected mode does not accept, or a required mode field is missing.
	ErrInvalidParameter = errors.New("invalid mode parameter")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending values verbatim
// =============================================================================

// ValidationError reports a structural or semantic request violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RateNotFoundError reports a lookup before the earliest table entry.
type RateNotFoundError struct {
	Term     Term
	Date     Date
	Earliest Date
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no %s-term rate for %s: table starts %s",
		e.Term, e.Date, e.Earliest)
}

func (e *RateNotFoundError) Unwrap() error { return ErrRateNotFound }

// InvalidPaymentDateError reports a payment outside [Start, End] or a
// payment sequence that is not in non-decreasing date order.
type InvalidPaymentDateError struct {
	Date    Date
	Start   Date
	End     Date
	Message string
}

func (e *InvalidPaymentDateError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment on %s: %s", e.Date, e.Message)
	}
	return fmt.Sprintf("payment on %s outside calculation range [%s, %s]",
		e.Date, e.Start, e.End)
}

func (e *InvalidPaymentDateError) Unwrap() error { return ErrInvalidPaymentDate }

// MissingCycleError reports compound mode without an explicit cycle.
type MissingCycleError struct{}

func (e *MissingCycleError) Error() string {
	return "compound mode requires an explicit compounding cycle"
}

func (e *MissingCycleError) Unwrap() error { return ErrMissingCycle }

// InvalidParameterError reports a mode/field mismatch.
type InvalidParameterError struct {
	Mode    Mode
	Field   string
	Message string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("mode %s: field %s: %s", e.Mode, e.Field, e.Message)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input,
// as opposed to an engine defect. All engine errors currently are.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidPaymentDate) ||
		errors.Is(err, ErrMissingCycle) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrRateNotFound)
}
