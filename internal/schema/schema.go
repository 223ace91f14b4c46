package schema

import (
	"fmt"
	"sort"
)

// Kind identifies the decode/encode algorithm for a parameter.
//
// The set is closed: every descriptor carries exactly one of these and the
// value engine switches exhaustively over them.
type Kind string

// Parameter kinds.
const (
	// KindSensor is a read-only value with an optional unit (temperature, pH, ORP).
	KindSensor Kind = "sensor"

	// KindBinarySensor is a read-only boolean state (alarm active, pump running).
	KindBinarySensor Kind = "binary_sensor"

	// KindNumber is a writable numeric setpoint with device-reported bounds.
	KindNumber Kind = "number"

	// KindSwitch is a writable boolean toggle.
	KindSwitch Kind = "switch"

	// KindSelect is a writable enumerated mode resolved through two lookup tables.
	KindSelect Kind = "select"
)

// Kinds lists all valid parameter kinds.
var Kinds = []Kind{KindSensor, KindBinarySensor, KindNumber, KindSwitch, KindSelect}

// Valid reports whether k is a known parameter kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSensor, KindBinarySensor, KindNumber, KindSwitch, KindSelect:
		return true
	default:
		return false
	}
}

// Companion-bound field markers for number descriptors whose wire key
// carries a linked [min, max] pair.
const (
	FieldMinT = "minT"
	FieldMaxT = "maxT"
)

// Descriptor fully specifies how to decode and encode one logical parameter.
//
// Descriptors are immutable after schema load; the value engine only reads them.
type Descriptor struct {
	// Name is the logical parameter name (e.g., "ph", "water_meter_unit").
	Name string

	// WireKey is the device's widget identifier without the model/firmware
	// prefix (e.g., "w_1eommf39k"). Stable per firmware build.
	WireKey string

	// Kind selects the decode/encode algorithm.
	Kind Kind

	// Conversion maps raw device tokens to human-readable tokens.
	// Used by sensor and binary_sensor decoding, and as the second stage
	// of select resolution. Nil means passthrough.
	Conversion map[string]string

	// Options maps a raw numeric option key (as a string) to an intermediate
	// device token. First stage of select resolution; required for selects.
	Options map[string]string

	// Field marks a number descriptor as one half of a linked bound pair
	// sharing a single wire key: FieldMinT or FieldMaxT. Empty otherwise.
	Field string
}

// Schema is the loaded mapping document for one device model and firmware.
//
// It is immutable after Load and safe for concurrent readers.
type Schema struct {
	// ModelID is the device product code (e.g., "PDPR1H1HAW100").
	ModelID string

	// FWCode is the firmware code the document applies to (e.g., "539187").
	FWCode string

	byName map[string]*Descriptor
	byKind map[Kind][]string
}

// Lookup returns the descriptor for a logical parameter name.
//
// Returns:
//   - *Descriptor: The descriptor, never nil on success
//   - error: ErrUnknownParameter if the name is not mapped
func (s *Schema) Lookup(name string) (*Descriptor, error) {
	d, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return d, nil
}

// Contains reports whether a logical parameter name is mapped.
func (s *Schema) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// ListByKind returns the sorted logical names of all descriptors of one kind.
func (s *Schema) ListByKind(kind Kind) []string {
	names := s.byKind[kind]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Names returns all mapped logical names, sorted.
func (s *Schema) Names() []string {
	out := make([]string, 0, len(s.byName))
	for name := range s.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of mapped parameters.
func (s *Schema) Len() int {
	return len(s.byName)
}

// Prefix returns the wire-key prefix for this model+firmware combination.
//
// Every key in a device payload is the prefix followed by the descriptor's
// wire key, e.g. "PDPR1H1HAW100_FW539187_w_1eommf39k".
func (s *Schema) Prefix() string {
	return fmt.Sprintf("%s_FW%s_", s.ModelID, s.FWCode)
}

// FullWireKey returns the prefixed wire key for a descriptor.
func (s *Schema) FullWireKey(d *Descriptor) string {
	return s.Prefix() + d.WireKey
}

// Companion returns the descriptor forming the other half of a linked
// min/max bound pair: a number descriptor with the same wire key and the
// opposite Field marker.
//
// Returns:
//   - *Descriptor: The companion, or nil if d is not part of a pair or the
//     companion is not mapped
func (s *Schema) Companion(d *Descriptor) *Descriptor {
	var want string
	switch d.Field {
	case FieldMinT:
		want = FieldMaxT
	case FieldMaxT:
		want = FieldMinT
	default:
		return nil
	}

	for _, name := range s.byKind[KindNumber] {
		c := s.byName[name]
		if c.Field == want && c.WireKey == d.WireKey {
			return c
		}
	}
	return nil
}
