package settings

import (
	"errors"
	"fmt"
)

// Errors returned by settings operations.
var (
	// ErrInvalidType indicates the supplied value cannot be interpreted
	// as the tunable's required type.
	ErrInvalidType = errors.New("invalid type")

	// ErrInvalidValue indicates a value of the right type outside the
	// tunable's legal range.
	ErrInvalidValue = errors.New("invalid value")

	// ErrOverflow indicates a value that cannot be represented in the
	// native store's integer width.
	ErrOverflow = errors.New("value overflows native width")

	// ErrNoExposedTypes indicates the façade was constructed with an
	// empty exposed-type registry.
	ErrNoExposedTypes = errors.New("exposed type registry is empty")
)

// ConversionError describes a rejected setter input.
type ConversionError struct {
	// Tunable is the name of the tunable being set.
	Tunable string
	// Value is the rejected value.
	Value any
	// Kind is the taxonomy sentinel: ErrInvalidType, ErrInvalidValue
	// or ErrOverflow.
	Kind error
	// Message describes the rejection.
	Message string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot set %s: %s (value: %v)", e.Tunable, e.Message, e.Value)
}

// Unwrap returns the taxonomy sentinel so callers can branch with errors.Is.
func (e *ConversionError) Unwrap() error {
	return e.Kind
}

// InvariantViolation reports a capability registry found in a mixed
// state during a toggle. It indicates a bug in registry population and
// is raised as a panic, never returned as a recoverable error.
type InvariantViolation struct {
	// Type is the exposed type found in the unexpected state.
	Type string
	// Message describes the inconsistency.
	Message string
}

// Error implements the error interface so the panic value reads well.
func (v InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation on exposed type %s: %s", v.Type, v.Message)
}
