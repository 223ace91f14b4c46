package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/pooldose-core/internal/infrastructure/config"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/logging"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/pooldose-core/internal/schema"
	"github.com/nerrad567/pooldose-core/internal/values"
)

const testMapping = `
model_id: TESTMODEL
fw_code: "000001"
parameters:
  temperature:
    key: w_temp
    kind: sensor
  ph_target:
    key: w_target
    kind: number
  stop_dosing:
    key: w_stop
    kind: switch
`

const testPrefix = "TESTMODEL_FW000001_"

type fakeMQTT struct {
	mu        sync.Mutex
	published map[string][][]byte
	handlers  map[string]mqtt.MessageHandler
	connected bool
}

func newFakeMQTT() *fakeMQTT {
	return &fakeMQTT{
		published: make(map[string][][]byte),
		handlers:  make(map[string]mqtt.MessageHandler),
		connected: true,
	}
}

func (f *fakeMQTT) Publish(topic string, payload []byte, _ byte, _ bool) error {
	return f.PublishRetained(topic, payload)
}

func (f *fakeMQTT) PublishRetained(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[topic] = append(f.published[topic], payload)
	return nil
}

func (f *fakeMQTT) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeMQTT) IsConnected() bool { return f.connected }

func (f *fakeMQTT) count(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published[topic])
}

func (f *fakeMQTT) last(topic string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.published[topic]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

type fakeDispatcher struct {
	err   error
	calls int
}

func (f *fakeDispatcher) SetValue(context.Context, string, string, any, string) error {
	f.calls++
	return f.err
}

// fakeSession serves accessors over a mutable raw map.
type fakeSession struct {
	sch   *schema.Schema
	raw   map[string]any
	disp  *fakeDispatcher
	stale bool
	err   error
}

func (f *fakeSession) DeviceID() string { return "TESTDEVICE" }

func (f *fakeSession) Instant(context.Context) (*values.Instant, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return values.NewInstant("TESTDEVICE", f.sch, values.NewSnapshot(f.raw), f.disp, nil), f.stale, nil
}

func newFakeSession(t *testing.T) *fakeSession {
	t.Helper()
	sch, err := schema.Parse([]byte(testMapping))
	if err != nil {
		t.Fatalf("schema.Parse() error = %v", err)
	}
	return &fakeSession{
		sch:  sch,
		disp: &fakeDispatcher{},
		raw: map[string]any{
			testPrefix + "w_temp": map[string]any{"current": 27.5, "magnitude": []any{"°C"}},
			testPrefix + "w_target": map[string]any{
				"current": 7.2, "absMin": 6.5, "absMax": 8.5, "resolution": 0.1,
			},
			testPrefix + "w_stop": map[string]any{"current": "F"},
		},
	}
}

type fakeTelemetry struct {
	mu       sync.Mutex
	readings map[string]float64
	states   map[string]bool
}

func newFakeTelemetry() *fakeTelemetry {
	return &fakeTelemetry{readings: make(map[string]float64), states: make(map[string]bool)}
}

func (f *fakeTelemetry) WriteReading(_ string, name string, value float64, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings[name] = value
}

func (f *fakeTelemetry) WriteState(_ string, name string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[name] = on
}

func newTestBridge(t *testing.T, session *fakeSession, broker *fakeMQTT, telemetry TelemetryWriter) *Bridge {
	t.Helper()
	b, err := New(Deps{
		Config:    config.BridgeConfig{Enabled: true, PollInterval: 30},
		QoS:       1,
		Logger:    logging.Default(),
		Session:   session,
		MQTT:      broker,
		Telemetry: telemetry,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func TestPollOnce_PublishesState(t *testing.T) {
	session := newFakeSession(t)
	broker := newFakeMQTT()
	b := newTestBridge(t, session, broker, nil)

	b.pollOnce(context.Background())

	if got := broker.last("pooldose/availability/TESTDEVICE"); string(got) != "online" {
		t.Errorf("availability = %q, want online", got)
	}

	var entry map[string]any
	payload := broker.last("pooldose/state/TESTDEVICE/temperature")
	if payload == nil {
		t.Fatal("temperature state not published")
	}
	if err := json.Unmarshal(payload, &entry); err != nil {
		t.Fatalf("decoding state payload: %v", err)
	}
	if entry["value"] != 27.5 || entry["unit"] != "°C" {
		t.Errorf("temperature payload = %v, want 27.5 °C", entry)
	}

	target := broker.last("pooldose/state/TESTDEVICE/ph_target")
	if err := json.Unmarshal(target, &entry); err != nil {
		t.Fatalf("decoding setpoint payload: %v", err)
	}
	for _, field := range []string{"value", "min", "max", "step"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("setpoint payload missing %q", field)
		}
	}
}

func TestPollOnce_SuppressesUnchanged(t *testing.T) {
	session := newFakeSession(t)
	broker := newFakeMQTT()
	b := newTestBridge(t, session, broker, nil)

	b.pollOnce(context.Background())
	b.pollOnce(context.Background())

	if got := broker.count("pooldose/state/TESTDEVICE/temperature"); got != 1 {
		t.Errorf("unchanged value published %d times, want 1", got)
	}

	// A changed reading goes out again.
	session.raw[testPrefix+"w_temp"] = map[string]any{"current": 28.0, "magnitude": []any{"°C"}}
	b.pollOnce(context.Background())
	if got := broker.count("pooldose/state/TESTDEVICE/temperature"); got != 2 {
		t.Errorf("changed value published %d times, want 2", got)
	}
}

func TestPollOnce_DeviceDown(t *testing.T) {
	session := newFakeSession(t)
	session.err = errors.New("host unreachable")
	broker := newFakeMQTT()
	b := newTestBridge(t, session, broker, nil)

	b.pollOnce(context.Background())

	if got := broker.last("pooldose/availability/TESTDEVICE"); string(got) != "offline" {
		t.Errorf("availability = %q, want offline", got)
	}
	if broker.count("pooldose/state/TESTDEVICE/temperature") != 0 {
		t.Error("state published while device down")
	}
}

func TestPollOnce_Telemetry(t *testing.T) {
	session := newFakeSession(t)
	broker := newFakeMQTT()
	telemetry := newFakeTelemetry()
	b := newTestBridge(t, session, broker, telemetry)

	b.pollOnce(context.Background())

	if telemetry.readings["temperature"] != 27.5 {
		t.Errorf("temperature reading = %v, want 27.5", telemetry.readings["temperature"])
	}
	if telemetry.readings["ph_target"] != 7.2 {
		t.Errorf("ph_target reading = %v, want 7.2", telemetry.readings["ph_target"])
	}
	if on, ok := telemetry.states["stop_dosing"]; !ok || on {
		t.Errorf("stop_dosing state = %v %v, want recorded false", on, ok)
	}
}

func TestPollOnce_StaleSkipsTelemetry(t *testing.T) {
	session := newFakeSession(t)
	session.stale = true
	broker := newFakeMQTT()
	telemetry := newFakeTelemetry()
	b := newTestBridge(t, session, broker, telemetry)

	b.pollOnce(context.Background())

	if len(telemetry.readings) != 0 || len(telemetry.states) != 0 {
		t.Error("stale snapshot was written to telemetry")
	}
	// State topics still update so consumers keep last-known values.
	if broker.count("pooldose/state/TESTDEVICE/temperature") != 1 {
		t.Error("stale snapshot not published to state topics")
	}
}

func TestHandleCommand(t *testing.T) {
	session := newFakeSession(t)
	broker := newFakeMQTT()
	b := newTestBridge(t, session, broker, nil)

	err := b.handleCommand("pooldose/command/TESTDEVICE/ph_target", []byte("7.0"))
	if err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}
	if session.disp.calls != 1 {
		t.Errorf("dispatched %d writes, want 1", session.disp.calls)
	}
	// The follow-up poll refreshes state topics.
	if broker.count("pooldose/state/TESTDEVICE/ph_target") == 0 {
		t.Error("state not republished after command")
	}
}

func TestHandleCommand_ObjectPayload(t *testing.T) {
	session := newFakeSession(t)
	b := newTestBridge(t, session, newFakeMQTT(), nil)

	err := b.handleCommand("pooldose/command/TESTDEVICE/stop_dosing", []byte(`{"value": true}`))
	if err != nil {
		t.Fatalf("handleCommand() error = %v", err)
	}
	if session.disp.calls != 1 {
		t.Errorf("dispatched %d writes, want 1", session.disp.calls)
	}
}

func TestHandleCommand_Rejected(t *testing.T) {
	session := newFakeSession(t)
	b := newTestBridge(t, session, newFakeMQTT(), nil)

	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{"out of range", "pooldose/command/TESTDEVICE/ph_target", "9.9"},
		{"unknown parameter", "pooldose/command/TESTDEVICE/nonexistent", "1"},
		{"malformed payload", "pooldose/command/TESTDEVICE/ph_target", "not json"},
		{"read-only sensor", "pooldose/command/TESTDEVICE/temperature", "20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.handleCommand(tt.topic, []byte(tt.payload)); err == nil {
				t.Error("handleCommand() error = nil, want rejection")
			}
		})
	}
	if session.disp.calls != 0 {
		t.Errorf("rejected commands dispatched %d writes, want 0", session.disp.calls)
	}
}

func TestStartAndStop(t *testing.T) {
	session := newFakeSession(t)
	broker := newFakeMQTT()
	b := newTestBridge(t, session, broker, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	broker.mu.Lock()
	_, subscribed := broker.handlers["pooldose/command/TESTDEVICE/+"]
	broker.mu.Unlock()
	if !subscribed {
		t.Error("command wildcard not subscribed")
	}

	b.Stop()
	if got := broker.last("pooldose/availability/TESTDEVICE"); string(got) != "offline" {
		t.Errorf("availability after Stop() = %q, want offline", got)
	}
}

func TestHealthCheck(t *testing.T) {
	session := newFakeSession(t)
	broker := newFakeMQTT()
	b := newTestBridge(t, session, broker, nil)

	if err := b.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}

	broker.connected = false
	if err := b.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() error = nil with broker down")
	}
}
