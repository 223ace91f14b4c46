package values

import (
	"fmt"
	"strings"

	"github.com/nerrad567/pooldose-core/internal/schema"
)

// decode translates one raw snapshot entry into a typed reading according
// to its descriptor kind.
//
// Returns:
//   - sensor:        Reading
//   - binary_sensor: bool
//   - number:        NumberReading
//   - switch:        bool
//   - select:        string (display value)
func decode(d *schema.Descriptor, entry any) (any, error) {
	switch d.Kind {
	case schema.KindSensor:
		return decodeSensor(d, entry)
	case schema.KindBinarySensor:
		return decodeBinary(d, entry)
	case schema.KindNumber:
		return decodeNumber(d, entry)
	case schema.KindSwitch:
		return decodeSwitch(d, entry)
	case schema.KindSelect:
		return decodeSelect(d, entry)
	default:
		return nil, fmt.Errorf("%w: %q has unsupported kind %q", ErrTypeMismatch, d.Name, d.Kind)
	}
}

func decodeSensor(d *schema.Descriptor, entry any) (any, error) {
	value, ok := rawCurrent(entry)
	if !ok {
		return nil, fmt.Errorf("%w: sensor %q has no current value", ErrNoData, d.Name)
	}

	unit := entryUnit(entry)

	// Label-token sensors carry an opaque firmware token; the conversion
	// table maps it to a stable display string. Unmapped values pass
	// through unchanged so an unknown firmware label still reads.
	if len(d.Conversion) > 0 {
		if display, ok := d.Conversion[tokenString(value)]; ok {
			return Reading{Value: display}, nil
		}
	}

	return Reading{Value: value, Unit: unit}, nil
}

func decodeBinary(d *schema.Descriptor, entry any) (bool, error) {
	value, ok := rawCurrent(entry)
	if !ok {
		return false, fmt.Errorf("%w: binary sensor %q has no current value", ErrNoData, d.Name)
	}

	// Alarm-style parameters report a label token; the conversion table
	// collapses it to the device's O/F boolean convention.
	if len(d.Conversion) > 0 {
		token, ok := d.Conversion[tokenString(value)]
		if !ok {
			return false, fmt.Errorf("%w: binary sensor %q token %v has no mapping", ErrNotBoolean, d.Name, value)
		}
		value = token
	}

	return asBool(d.Name, value)
}

func decodeNumber(d *schema.Descriptor, entry any) (NumberReading, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		return NumberReading{}, fmt.Errorf("%w: number %q entry is %T, want object", ErrTypeMismatch, d.Name, entry)
	}

	// Paired-bounds parameters store their value under a dedicated field
	// (minT or maxT) next to the shared entry's own current value.
	valueKey := "current"
	if d.Field != "" {
		valueKey = d.Field
	}
	current, ok := asFloat(m[valueKey])
	if !ok {
		return NumberReading{}, fmt.Errorf("%w: number %q has no numeric %s value", ErrTypeMismatch, d.Name, valueKey)
	}
	min, okMin := asFloat(m["absMin"])
	max, okMax := asFloat(m["absMax"])
	step, okStep := asFloat(m["resolution"])
	if !okMin || !okMax || !okStep {
		return NumberReading{}, fmt.Errorf("%w: number %q is missing absMin/absMax/resolution", ErrTypeMismatch, d.Name)
	}

	// Paired-bounds parameters share one wire entry; the device encodes
	// both halves in a single range, split at the midpoint.
	switch d.Field {
	case schema.FieldMinT:
		max = max / 2
	case schema.FieldMaxT:
		min = max/2 + step
	}

	return NumberReading{
		Value: current,
		Unit:  entryUnit(entry),
		Min:   min,
		Max:   max,
		Step:  step,
	}, nil
}

func decodeSwitch(d *schema.Descriptor, entry any) (bool, error) {
	value, ok := rawCurrent(entry)
	if !ok {
		return false, fmt.Errorf("%w: switch %q has no current value", ErrNoData, d.Name)
	}
	return asBool(d.Name, value)
}

func decodeSelect(d *schema.Descriptor, entry any) (string, error) {
	value, ok := rawCurrent(entry)
	if !ok {
		return "", fmt.Errorf("%w: select %q has no current value", ErrNoData, d.Name)
	}

	key := tokenString(value)
	token, ok := d.Options[key]
	if !ok {
		return "", fmt.Errorf("%w: select %q option key %q not in options table", ErrUnresolvedOption, d.Name, key)
	}
	display, ok := d.Conversion[token]
	if !ok {
		return "", fmt.Errorf("%w: select %q token %q not in conversion table", ErrUnresolvedOption, d.Name, token)
	}
	return display, nil
}

// asBool interprets a raw value as a boolean: native booleans directly,
// strings via the O/F token convention.
func asBool(name string, value any) (bool, error) {
	switch t := value.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToUpper(t) {
		case tokenOn:
			return true, nil
		case tokenOff:
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %q value %v (%T)", ErrNotBoolean, name, value, value)
}

// entryUnit extracts and normalizes the unit of an object entry. Bare
// scalar entries have no unit.
func entryUnit(entry any) string {
	m, ok := entry.(map[string]any)
	if !ok {
		return ""
	}
	if mag, ok := m["magnitude"].([]any); ok && len(mag) > 0 {
		if s, ok := mag[0].(string); ok {
			return normalizeUnit(s)
		}
	}
	if s, ok := m["unit"].(string); ok {
		return normalizeUnit(s)
	}
	return ""
}

// normalizeUnit maps device unit tokens to canonical display units.
//
// pH and "undefined" denote unit-less readings; the device reports
// chlorine magnitudes under several spellings that all mean ppm.
func normalizeUnit(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "undefined", "ph", "none":
		return ""
	case "cl2", "chlorine", "ppm":
		return "ppm"
	default:
		return raw
	}
}
