package schema

import "errors"

// Domain errors for the schema package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, schema.ErrUnknownParameter) {
//	    // name is not mapped for this model/firmware
//	}
var (
	// ErrUnknownParameter is returned when a logical name is not present
	// in the loaded mapping document.
	ErrUnknownParameter = errors.New("schema: unknown parameter")

	// ErrInvalidDescriptor is returned when a mapping document entry is
	// structurally invalid (missing wire key, unknown kind, select without
	// options). Raised at load time, never at first use.
	ErrInvalidDescriptor = errors.New("schema: invalid descriptor")

	// ErrInvalidDocument is returned when a mapping document is malformed
	// at the top level (missing model or firmware identifiers).
	ErrInvalidDocument = errors.New("schema: invalid document")

	// ErrNotFound is returned when no embedded mapping document matches a
	// model/firmware combination.
	ErrNotFound = errors.New("schema: no mapping document for model/firmware")
)
