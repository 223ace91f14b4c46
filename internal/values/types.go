package values

import (
	"context"
	"strconv"
)

// Wire-level value-type discriminators understood by the device's
// setInstantValues endpoint.
const (
	// WireTypeNumber tags numeric payloads (setpoints, select option keys).
	WireTypeNumber = "NUMBER"

	// WireTypeString tags string payloads (boolean tokens).
	WireTypeString = "STRING"
)

// Device boolean token convention: "O" is on/true, "F" is off/false.
const (
	tokenOn  = "O"
	tokenOff = "F"
)

// Reading is a decoded sensor value with its unit.
//
// Unit is empty for unit-less readings (pH, converted label tokens).
type Reading struct {
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// NumberReading is a decoded numeric setpoint together with the
// device-reported live bounds that govern writes.
type NumberReading struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
}

// Dispatcher is the transport capability the accessor needs for writes.
//
// Implemented by transport.Handler; tests substitute a fake.
type Dispatcher interface {
	// SetValue writes one encoded value to the device, addressed by full
	// wire key and tagged with a wire-level type discriminator.
	SetValue(ctx context.Context, deviceID, wireKey string, value any, wireType string) error
}

// rawCurrent extracts the scalar payload of a raw entry: the "current"
// field for object entries, the entry itself for bare scalars.
func rawCurrent(entry any) (any, bool) {
	if m, ok := entry.(map[string]any); ok {
		v, ok := m["current"]
		return v, ok
	}
	return entry, entry != nil
}

// tokenString renders a raw scalar as a conversion-table key, matching the
// device's string forms ("0" for 0, "7.5" for 7.5).
func tokenString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// asFloat coerces a raw JSON scalar to float64.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}
