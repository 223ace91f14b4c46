package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/pooldose-core/internal/infrastructure/config"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/logging"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/pooldose-core/internal/values"
)

// commandTimeout bounds the device round-trip for one MQTT command.
const commandTimeout = 10 * time.Second

// Session is the device session the bridge publishes from. Implemented by
// client.Client; tests substitute a fake.
type Session interface {
	DeviceID() string
	Instant(ctx context.Context) (*values.Instant, bool, error)
}

// MQTTClient is the broker capability the bridge needs.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// TelemetryWriter receives decoded values for time-series storage.
// Implemented by influxdb.Client. Optional: a nil writer disables telemetry.
type TelemetryWriter interface {
	WriteReading(deviceID string, name string, value float64, unit string)
	WriteState(deviceID string, name string, on bool)
}

// Deps holds the dependencies required by the bridge.
type Deps struct {
	Config    config.BridgeConfig
	QoS       int
	Logger    *logging.Logger
	Session   Session
	MQTT      MQTTClient
	Telemetry TelemetryWriter
}

// Bridge runs the poll/publish loop and the MQTT command path.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	cfg       config.BridgeConfig
	qos       byte
	logger    *logging.Logger
	session   Session
	mqtt      MQTTClient
	telemetry TelemetryWriter
	topics    mqtt.Topics

	// Last published payload per state topic, for change suppression.
	cacheMu    sync.Mutex
	stateCache map[string][]byte

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a Bridge with the given dependencies.
//
// Returns:
//   - *Bridge: Bridge ready for Start()
//   - error: If required dependencies are missing
func New(deps Deps) (*Bridge, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("device session is required")
	}
	if deps.MQTT == nil {
		return nil, fmt.Errorf("mqtt client is required")
	}

	return &Bridge{
		cfg:        deps.Config,
		qos:        byte(deps.QoS),
		logger:     deps.Logger.With("component", "bridge"),
		session:    deps.Session,
		mqtt:       deps.MQTT,
		telemetry:  deps.Telemetry,
		stateCache: make(map[string][]byte),
		done:       make(chan struct{}),
	}, nil
}

// Start subscribes to command topics and launches the poll loop.
//
// Parameters:
//   - ctx: Cancelling this context stops the poll loop
//
// Returns:
//   - error: If the command subscription fails
func (b *Bridge) Start(ctx context.Context) error {
	deviceID := b.session.DeviceID()

	if err := b.mqtt.Subscribe(b.topics.CommandWildcard(deviceID), b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to command topic: %w", err)
	}

	b.wg.Add(1)
	go b.pollLoop(ctx)

	b.logger.Info("bridge started",
		"device_id", deviceID,
		"poll_interval_s", b.cfg.PollInterval)
	return nil
}

// Stop halts the poll loop and marks the device offline.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.wg.Wait()
		b.publishAvailability(false)
		b.logger.Info("bridge stopped")
	})
}

// pollLoop fetches and publishes on the configured interval. The first
// poll happens immediately so retained topics populate on startup.
func (b *Bridge) pollLoop(ctx context.Context) {
	defer b.wg.Done()

	interval := time.Duration(b.cfg.PollInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	b.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			b.pollOnce(ctx)
		}
	}
}

// pollOnce fetches one snapshot and publishes changed values.
func (b *Bridge) pollOnce(ctx context.Context) {
	iv, stale, err := b.session.Instant(ctx)
	if err != nil {
		b.logger.Warn("poll failed", "error", err)
		b.publishAvailability(false)
		return
	}
	b.publishAvailability(true)

	deviceID := b.session.DeviceID()
	for _, section := range iv.Structured() {
		for name, entry := range section {
			b.publishState(deviceID, name, entry)
			// Stale snapshots repeat old readings; keep them off the
			// time-series store.
			if !stale {
				b.writeTelemetry(deviceID, name, entry)
			}
		}
	}
}

// publishState publishes one decoded value as retained JSON, suppressing
// unchanged payloads.
func (b *Bridge) publishState(deviceID, name string, entry any) {
	payload, err := json.Marshal(entry)
	if err != nil {
		b.logger.Warn("state payload marshal failed", "parameter", name, "error", err)
		return
	}

	topic := b.topics.State(deviceID, name)

	b.cacheMu.Lock()
	unchanged := bytes.Equal(b.stateCache[topic], payload)
	if !unchanged {
		b.stateCache[topic] = payload
	}
	b.cacheMu.Unlock()
	if unchanged {
		return
	}

	if err := b.mqtt.PublishRetained(topic, payload); err != nil {
		b.logger.Warn("state publish failed", "topic", topic, "error", err)
	}
}

// writeTelemetry forwards numeric readings and boolean states to the
// time-series store.
func (b *Bridge) writeTelemetry(deviceID, name string, entry any) {
	if b.telemetry == nil {
		return
	}
	m, ok := entry.(map[string]any)
	if !ok {
		return
	}
	switch v := m["value"].(type) {
	case float64:
		unit, _ := m["unit"].(string)
		b.telemetry.WriteReading(deviceID, name, v, unit)
	case bool:
		b.telemetry.WriteState(deviceID, name, v)
	}
}

// publishAvailability sets the retained availability topic.
func (b *Bridge) publishAvailability(online bool) {
	payload := []byte("offline")
	if online {
		payload = []byte("online")
	}
	topic := b.topics.Availability(b.session.DeviceID())
	if err := b.mqtt.PublishRetained(topic, payload); err != nil {
		b.logger.Warn("availability publish failed", "error", err)
	}
}

// handleCommand processes one write command from MQTT.
//
// The parameter name is the last topic segment. The payload is either a
// bare JSON scalar or an object with a value field:
//
//	pooldose/command/SN123_DEVICE/ph_target  <-  7.2
//	pooldose/command/SN123_DEVICE/stop_dosing  <-  {"value": true}
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	name := parts[len(parts)-1]
	if name == "" {
		return fmt.Errorf("command topic %q has no parameter name", topic)
	}

	value, err := decodeCommandPayload(payload)
	if err != nil {
		b.logger.Warn("command payload invalid", "parameter", name, "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	iv, _, err := b.session.Instant(ctx)
	if err != nil {
		b.logger.Warn("command snapshot fetch failed", "parameter", name, "error", err)
		return err
	}
	if err := iv.Set(ctx, name, value); err != nil {
		b.logger.Warn("command rejected", "parameter", name, "value", value, "error", err)
		return err
	}

	b.logger.Info("command applied", "parameter", name, "value", value)

	// Re-poll so the retained state topic reflects the write promptly.
	b.pollOnce(ctx)
	return nil
}

// decodeCommandPayload parses a command body: a bare JSON scalar, or an
// object wrapping it in a value field.
func decodeCommandPayload(payload []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parsing command payload: %w", err)
	}
	if m, ok := raw.(map[string]any); ok {
		v, ok := m["value"]
		if !ok {
			return nil, fmt.Errorf("command object missing value field")
		}
		return v, nil
	}
	return raw, nil
}

// HealthCheck verifies the bridge's broker connection.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (b *Bridge) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("bridge health check: %w", ctx.Err())
	default:
	}

	if !b.mqtt.IsConnected() {
		return fmt.Errorf("bridge mqtt connection down")
	}
	return nil
}
