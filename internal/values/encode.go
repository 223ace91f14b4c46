package values

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nerrad567/pooldose-core/internal/schema"
)

// stepEpsilon absorbs float rounding when checking a value against the
// device-reported step grid.
const stepEpsilon = 1e-9

// validateNumber checks a write value against the live bounds decoded from
// the current snapshot: inclusive range, then step-grid alignment from min.
func validateNumber(name string, reading NumberReading, value float64) error {
	if value < reading.Min || value > reading.Max {
		return fmt.Errorf("%w: %q value %v outside [%v, %v]",
			ErrOutOfRange, name, value, reading.Min, reading.Max)
	}
	if reading.Step > 0 {
		steps := (value - reading.Min) / reading.Step
		if math.Abs(steps-math.Round(steps)) > stepEpsilon {
			return fmt.Errorf("%w: %q value %v not reachable from %v in steps of %v",
				ErrInvalidStep, name, value, reading.Min, reading.Step)
		}
	}
	return nil
}

// numberPayload assembles the wire payload for a validated number write.
//
// Plain numbers send the bare value. Paired-bounds parameters share one
// wire entry and must always send both halves as an ordered [min, max]
// array, taking the untouched half from its companion's current reading.
func numberPayload(d *schema.Descriptor, value float64, companion *NumberReading) (any, error) {
	switch d.Field {
	case schema.FieldMinT:
		if companion == nil {
			return nil, fmt.Errorf("%w: %q needs its paired upper bound", ErrNoData, d.Name)
		}
		return []float64{value, companion.Value}, nil
	case schema.FieldMaxT:
		if companion == nil {
			return nil, fmt.Errorf("%w: %q needs its paired lower bound", ErrNoData, d.Name)
		}
		return []float64{companion.Value, value}, nil
	default:
		return value, nil
	}
}

// encodeSwitch maps a boolean to the device's O/F token convention.
func encodeSwitch(value bool) string {
	if value {
		return tokenOn
	}
	return tokenOff
}

// encodeSelect reverse-maps a display string to its numeric option key:
// display -> intermediate token (conversion table), token -> option key
// (options table).
func encodeSelect(d *schema.Descriptor, display string) (int, error) {
	var token string
	found := false
	for t, disp := range d.Conversion {
		if disp == display {
			token = t
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: select %q has no option %q", ErrInvalidOption, d.Name, display)
	}

	for key, t := range d.Options {
		if t == token {
			n, err := strconv.Atoi(key)
			if err != nil {
				return 0, fmt.Errorf("%w: select %q option key %q is not numeric", ErrInvalidOption, d.Name, key)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: select %q token %q has no option key", ErrInvalidOption, d.Name, token)
}
