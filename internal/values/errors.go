package values

import "errors"

// Domain errors for the value translation engine.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, values.ErrNoData) {
//	    // device did not report this parameter in the current snapshot
//	}
//
// Read-path errors never escape the Instant accessor (a failed decode reads
// as "key not present"); they exist for tests and for log context.
var (
	// ErrNoData is returned when a wire key is absent from the current
	// snapshot. Transient: the device may not report this parameter in its
	// current state.
	ErrNoData = errors.New("values: no data for parameter")

	// ErrNotBoolean is returned when a binary sensor or switch entry cannot
	// be interpreted as a boolean.
	ErrNotBoolean = errors.New("values: value is not boolean")

	// ErrTypeMismatch is returned when a raw entry does not have the shape
	// its descriptor kind requires.
	ErrTypeMismatch = errors.New("values: raw entry type mismatch")

	// ErrUnresolvedOption is returned when select decoding misses either
	// stage of the options/conversion lookup. Indicates a stale or
	// incomplete mapping document.
	ErrUnresolvedOption = errors.New("values: unresolved select option")

	// ErrInvalidOption is returned when a select write value is not a valid
	// reverse-mapped display string.
	ErrInvalidOption = errors.New("values: invalid select option")

	// ErrOutOfRange is returned when a number write value is outside the
	// device-reported [min, max] range.
	ErrOutOfRange = errors.New("values: value out of range")

	// ErrInvalidStep is returned when a number write value does not land on
	// the device-reported step grid.
	ErrInvalidStep = errors.New("values: value not on step grid")

	// ErrKindMismatch is returned when a typed setter is called for a
	// parameter of a different kind.
	ErrKindMismatch = errors.New("values: parameter kind mismatch")
)
