package valuation

import (
	"errors"
	"fmt"
)

// ErrInvalidAssumption is returned when a terminal value cannot be computed
// from otherwise well-formed inputs.
var ErrInvalidAssumption = errors.New("invalid assumption")

// ValidationError reports a single field that failed construction-time checks.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s, got %v", e.Field, e.Reason, e.Value)
}

func invalid(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// AssumptionError carries the rates that made a terminal value undefined.
// It unwraps to ErrInvalidAssumption.
type AssumptionError struct {
	LastFCF        float64
	DiscountRate   float64
	TerminalGrowth float64
	Reason         string
}

func (e *AssumptionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidAssumption, e.Reason)
}

func (e *AssumptionError) Unwrap() error {
	return ErrInvalidAssumption
}
