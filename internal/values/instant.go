package values

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/pooldose-core/internal/infrastructure/logging"
	"github.com/nerrad567/pooldose-core/internal/schema"
)

// Instant is the typed accessor over one raw snapshot.
//
// Reads are fail-soft: any decode failure (unknown parameter, missing key,
// malformed entry) reads as "not present" and is logged, never panicked or
// propagated. Writes are fail-soft too: setters report success as a bool
// and log the reason on failure.
//
// Decoded values are cached per parameter name. A successful write evicts
// that parameter's cache entry but does not refresh the underlying
// snapshot, so a subsequent read of the same accessor sees the stale
// pre-write raw value; callers wanting read-back consistency fetch a fresh
// accessor after writing.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Instant struct {
	deviceID   string
	schema     *schema.Schema
	snapshot   *Snapshot
	dispatcher Dispatcher
	log        *logging.Logger

	mu    sync.Mutex
	cache map[string]any
}

// NewInstant builds an accessor over a snapshot.
//
// Parameters:
//   - deviceID: Device identifier used when dispatching writes
//   - sch: Mapping document for the device's model/firmware pair
//   - snap: Raw snapshot to decode from
//   - dispatcher: Write transport; may be nil for read-only use
//   - log: Logger for decode/write diagnostics
func NewInstant(deviceID string, sch *schema.Schema, snap *Snapshot, dispatcher Dispatcher, log *logging.Logger) *Instant {
	if log == nil {
		log = logging.Default()
	}
	return &Instant{
		deviceID:   deviceID,
		schema:     sch,
		snapshot:   snap,
		dispatcher: dispatcher,
		log:        log.With("component", "values"),
		cache:      make(map[string]any),
	}
}

// Get returns the decoded value for a parameter name.
//
// Returns:
//   - sensor:        Reading
//   - binary_sensor: bool
//   - number:        NumberReading
//   - switch:        bool
//   - select:        string
//
// The second return is false when the parameter is unknown, absent from
// the snapshot, or fails to decode.
func (iv *Instant) Get(name string) (any, bool) {
	v, err := iv.get(name)
	if err != nil {
		iv.logReadFailure(name, err)
		return nil, false
	}
	return v, true
}

// GetOrDefault returns the decoded value, or def when unavailable.
func (iv *Instant) GetOrDefault(name string, def any) any {
	if v, ok := iv.Get(name); ok {
		return v
	}
	return def
}

// Contains reports whether the parameter is both known to the mapping
// document and present in the current snapshot.
func (iv *Instant) Contains(name string) bool {
	d, err := iv.schema.Lookup(name)
	if err != nil {
		return false
	}
	entry, ok := iv.snapshot.Get(iv.schema.FullWireKey(d))
	return ok && entry != nil
}

// ByKind decodes every parameter of one kind, keyed by name.
//
// Parameters that fail to decode are skipped, not errored.
func (iv *Instant) ByKind(kind schema.Kind) map[string]any {
	out := make(map[string]any)
	for _, name := range iv.schema.ListByKind(kind) {
		if v, ok := iv.Get(name); ok {
			out[name] = v
		}
	}
	return out
}

// Structured returns all decodable parameters grouped by kind, each shaped
// as a flat map suitable for JSON serialization.
func (iv *Instant) Structured() map[string]map[string]any {
	out := make(map[string]map[string]any, len(schema.Kinds))
	for _, kind := range schema.Kinds {
		section := make(map[string]any)
		for name, v := range iv.ByKind(kind) {
			section[name] = structuredEntry(v)
		}
		out[string(kind)] = section
	}
	return out
}

// SetNumber validates a numeric setpoint against the snapshot's live
// bounds and writes it to the device.
//
// Validation is inclusive-range then step-grid. Paired-bounds parameters
// send both halves of their shared range; the untouched half is taken from
// the companion's current reading.
//
// Returns true on success; failures are logged and reported as false.
func (iv *Instant) SetNumber(ctx context.Context, name string, value float64) bool {
	err := iv.setNumber(ctx, name, value)
	if err != nil {
		iv.log.Warn("number write failed", "parameter", name, "value", value, "error", err)
		return false
	}
	return true
}

func (iv *Instant) setNumber(ctx context.Context, name string, value float64) error {
	d, err := iv.schema.Lookup(name)
	if err != nil {
		return err
	}
	if d.Kind != schema.KindNumber {
		return fmt.Errorf("%w: %q is a %s, not a number", ErrKindMismatch, name, d.Kind)
	}

	current, err := iv.numberReading(d)
	if err != nil {
		return err
	}
	if err := validateNumber(name, current, value); err != nil {
		return err
	}

	var companion *NumberReading
	if comp := iv.schema.Companion(d); comp != nil {
		r, err := iv.numberReading(comp)
		if err != nil {
			return fmt.Errorf("companion %q: %w", comp.Name, err)
		}
		companion = &r
	}

	payload, err := numberPayload(d, value, companion)
	if err != nil {
		return err
	}
	return iv.dispatch(ctx, name, d, payload, WireTypeNumber)
}

// SetSwitch writes a boolean switch state to the device.
//
// Returns true on success; failures are logged and reported as false.
func (iv *Instant) SetSwitch(ctx context.Context, name string, value bool) bool {
	err := iv.setSwitch(ctx, name, value)
	if err != nil {
		iv.log.Warn("switch write failed", "parameter", name, "value", value, "error", err)
		return false
	}
	return true
}

func (iv *Instant) setSwitch(ctx context.Context, name string, value bool) error {
	d, err := iv.schema.Lookup(name)
	if err != nil {
		return err
	}
	if d.Kind != schema.KindSwitch {
		return fmt.Errorf("%w: %q is a %s, not a switch", ErrKindMismatch, name, d.Kind)
	}
	return iv.dispatch(ctx, name, d, encodeSwitch(value), WireTypeString)
}

// SetSelect reverse-maps a display string to its numeric option key and
// writes it to the device.
//
// Returns true on success; failures are logged and reported as false.
func (iv *Instant) SetSelect(ctx context.Context, name string, display string) bool {
	err := iv.setSelect(ctx, name, display)
	if err != nil {
		iv.log.Warn("select write failed", "parameter", name, "value", display, "error", err)
		return false
	}
	return true
}

func (iv *Instant) setSelect(ctx context.Context, name string, display string) error {
	d, err := iv.schema.Lookup(name)
	if err != nil {
		return err
	}
	if d.Kind != schema.KindSelect {
		return fmt.Errorf("%w: %q is a %s, not a select", ErrKindMismatch, name, d.Kind)
	}
	key, err := encodeSelect(d, display)
	if err != nil {
		return err
	}
	return iv.dispatch(ctx, name, d, key, WireTypeNumber)
}

// Set writes a value to a parameter, dispatching on its mapped kind.
//
// Unlike the typed setters this returns the underlying error, letting
// callers distinguish validation failures from transport failures. Sensor
// kinds are read-only and rejected with ErrKindMismatch.
func (iv *Instant) Set(ctx context.Context, name string, value any) error {
	d, err := iv.schema.Lookup(name)
	if err != nil {
		return err
	}
	switch d.Kind {
	case schema.KindNumber:
		f, ok := asFloat(value)
		if !ok {
			return fmt.Errorf("%w: number %q needs a numeric value, got %T", ErrTypeMismatch, name, value)
		}
		return iv.setNumber(ctx, name, f)
	case schema.KindSwitch:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: switch %q needs a boolean value, got %T", ErrTypeMismatch, name, value)
		}
		return iv.setSwitch(ctx, name, b)
	case schema.KindSelect:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: select %q needs a string value, got %T", ErrTypeMismatch, name, value)
		}
		return iv.setSelect(ctx, name, s)
	default:
		return fmt.Errorf("%w: %q is a read-only %s", ErrKindMismatch, name, d.Kind)
	}
}

// dispatch sends an encoded value through the transport and evicts the
// parameter's cache entry on success.
func (iv *Instant) dispatch(ctx context.Context, name string, d *schema.Descriptor, payload any, wireType string) error {
	if iv.dispatcher == nil {
		return errors.New("values: accessor is read-only, no dispatcher configured")
	}
	if err := iv.dispatcher.SetValue(ctx, iv.deviceID, iv.schema.FullWireKey(d), payload, wireType); err != nil {
		return err
	}

	iv.mu.Lock()
	delete(iv.cache, name)
	iv.mu.Unlock()
	return nil
}

func (iv *Instant) get(name string) (any, error) {
	iv.mu.Lock()
	if v, ok := iv.cache[name]; ok {
		iv.mu.Unlock()
		return v, nil
	}
	iv.mu.Unlock()

	d, err := iv.schema.Lookup(name)
	if err != nil {
		return nil, err
	}
	entry, ok := iv.snapshot.Get(iv.schema.FullWireKey(d))
	if !ok || entry == nil {
		return nil, fmt.Errorf("%w: %q (%s)", ErrNoData, name, iv.schema.FullWireKey(d))
	}

	v, err := decode(d, entry)
	if err != nil {
		return nil, err
	}

	iv.mu.Lock()
	iv.cache[name] = v
	iv.mu.Unlock()
	return v, nil
}

func (iv *Instant) logReadFailure(name string, err error) {
	// Absent keys are routine (the device omits parameters that do not
	// apply to its current state); everything else deserves a warning.
	if errors.Is(err, ErrNoData) {
		iv.log.Debug("parameter not in snapshot", "parameter", name)
		return
	}
	iv.log.Warn("value decode failed", "parameter", name, "error", err)
}

// structuredEntry shapes one decoded value for the Structured view.
func structuredEntry(v any) map[string]any {
	switch t := v.(type) {
	case Reading:
		e := map[string]any{"value": t.Value}
		if t.Unit != "" {
			e["unit"] = t.Unit
		}
		return e
	case NumberReading:
		e := map[string]any{
			"value": t.Value,
			"min":   t.Min,
			"max":   t.Max,
			"step":  t.Step,
		}
		if t.Unit != "" {
			e["unit"] = t.Unit
		}
		return e
	default:
		return map[string]any{"value": v}
	}
}

// numberReading decodes a number descriptor straight from the snapshot,
// bypassing the name cache so live bounds are always re-read for writes.
func (iv *Instant) numberReading(d *schema.Descriptor) (NumberReading, error) {
	entry, ok := iv.snapshot.Get(iv.schema.FullWireKey(d))
	if !ok || entry == nil {
		return NumberReading{}, fmt.Errorf("%w: %q", ErrNoData, d.Name)
	}
	return decodeNumber(d, entry)
}
