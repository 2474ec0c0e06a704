package settings

import "fmt"

// toUnsigned converts a caller-supplied value into an unsigned native
// integer no greater than max. It runs before any mutation and
// classifies every rejection:
//
//   - non-integer input (strings, bools, floats, ...) -> ErrInvalidType
//   - negative input -> ErrOverflow (the native value is unsigned)
//   - input exceeding max -> ErrOverflow
//
// Zero is in range here; tunables that require a strictly positive
// value reject it at the store boundary.
func toUnsigned(tunable string, value any, max uint64) (uint64, error) {
	var (
		u        uint64
		negative bool
	)

	switch v := value.(type) {
	case int:
		negative = v < 0
		if !negative {
			u = uint64(v)
		}
	case int8:
		negative = v < 0
		if !negative {
			u = uint64(v)
		}
	case int16:
		negative = v < 0
		if !negative {
			u = uint64(v)
		}
	case int32:
		negative = v < 0
		if !negative {
			u = uint64(v)
		}
	case int64:
		negative = v < 0
		if !negative {
			u = uint64(v)
		}
	case uint:
		u = uint64(v)
	case uint8:
		u = uint64(v)
	case uint16:
		u = uint64(v)
	case uint32:
		u = uint64(v)
	case uint64:
		u = v
	default:
		return 0, &ConversionError{
			Tunable: tunable,
			Value:   value,
			Kind:    ErrInvalidType,
			Message: fmt.Sprintf("expected integer, got %T", value),
		}
	}

	if negative {
		return 0, &ConversionError{
			Tunable: tunable,
			Value:   value,
			Kind:    ErrOverflow,
			Message: "negative value cannot be represented",
		}
	}
	if u > max {
		return 0, &ConversionError{
			Tunable: tunable,
			Value:   value,
			Kind:    ErrOverflow,
			Message: fmt.Sprintf("value exceeds native maximum %d", max),
		}
	}
	return u, nil
}

// toBool requires a bool and classifies anything else as ErrInvalidType.
func toBool(tunable string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, &ConversionError{
			Tunable: tunable,
			Value:   value,
			Kind:    ErrInvalidType,
			Message: fmt.Sprintf("expected bool, got %T", value),
		}
	}
	return b, nil
}
