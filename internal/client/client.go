package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nerrad567/pooldose-core/internal/infrastructure/config"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/logging"
	"github.com/nerrad567/pooldose-core/internal/schema"
	"github.com/nerrad567/pooldose-core/internal/transport"
	"github.com/nerrad567/pooldose-core/internal/values"
)

// apiVersionSupported is the device API generation this client speaks.
const apiVersionSupported = "v1/"

// Client is a connected session with one dosing device.
//
// Thread Safety:
//   - All methods are safe for concurrent use after Connect().
type Client struct {
	cfg     config.DeviceConfig
	handler *transport.Handler
	log     *logging.Logger

	mu        sync.Mutex
	connected bool
	info      values.Static
	schema    *schema.Schema
}

// New creates a Client for the configured device.
//
// Parameters:
//   - cfg: Device connection settings
//   - log: Logger for session diagnostics
func New(cfg config.DeviceConfig, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Default()
	}
	return &Client{
		cfg:     cfg,
		handler: transport.New(cfg, log),
		log:     log.With("component", "client"),
	}
}

// Connect establishes the session: transport handshake, API version gate,
// device identity and network queries, then mapping document selection.
//
// Returns:
//   - error: transport errors from the handshake, ErrUnsupportedAPIVersion,
//     ErrMissingIdentity, or schema.ErrNotFound when no mapping document
//     exists for the device's model/firmware pair
func (c *Client) Connect(ctx context.Context) error {
	if err := c.handler.Connect(ctx); err != nil {
		return err
	}

	if v := c.handler.APIVersion(); v != apiVersionSupported {
		return fmt.Errorf("%w: device reports %q, supported %q",
			ErrUnsupportedAPIVersion, v, apiVersionSupported)
	}

	info, err := c.loadDeviceInfo(ctx)
	if err != nil {
		return err
	}

	sch, err := schema.ForDevice(info.ModelID, info.FWCode)
	if err != nil {
		return fmt.Errorf("no mapping for model %q firmware %q: %w", info.ModelID, info.FWCode, err)
	}

	c.mu.Lock()
	c.info = info
	c.schema = sch
	c.connected = true
	c.mu.Unlock()

	c.log.Info("device session established",
		"device_id", info.DeviceID,
		"model_id", info.ModelID,
		"fw_code", info.FWCode,
		"parameters", sch.Len())
	return nil
}

// loadDeviceInfo collects the device identity from the debug configuration
// and the network endpoints.
//
// WiFi and access point queries are best-effort: some firmware revisions
// answer them with malformed JSON. The debug config and network info are
// required.
func (c *Client) loadDeviceInfo(ctx context.Context) (values.Static, error) {
	info := values.Static{
		APIVersion: c.handler.APIVersion(),
	}

	debug, err := c.handler.DebugConfig(ctx)
	if err != nil {
		return info, fmt.Errorf("fetching debug config: %w", err)
	}
	if gateway, ok := debug["GATEWAY"].(map[string]any); ok {
		info.SerialNumber = getString(gateway, "DID")
		info.Name = getString(gateway, "NAME")
		info.SWVersion = getString(gateway, "FW_REL")
	}
	device, ok := firstDevice(debug)
	if !ok {
		return info, fmt.Errorf("%w: debug config has no device block", ErrMissingIdentity)
	}
	info.DeviceID = getString(device, "DID")
	info.Model = getString(device, "NAME")
	info.ModelID = getString(device, "PRODUCT_CODE")
	info.FWVersion = getString(device, "FW_REL")
	// Some firmware revisions report the code with an FW prefix
	// ("FW539187"), others bare. Mapping documents store it bare.
	info.FWCode = strings.TrimPrefix(getString(device, "FW_CODE"), "FW")

	if info.DeviceID == "" || info.ModelID == "" || info.FWCode == "" {
		return info, fmt.Errorf("%w: device_id=%q model_id=%q fw_code=%q",
			ErrMissingIdentity, info.DeviceID, info.ModelID, info.FWCode)
	}

	if station, err := c.handler.WiFiStation(ctx); err != nil {
		c.log.Warn("wifi station query failed", "error", err)
	} else {
		info.WiFiSSID = getString(station, "SSID")
		info.MAC = getString(station, "MAC")
		info.IP = getString(station, "IP")
		if c.cfg.IncludeSensitiveData {
			info.WiFiKey = getString(station, "KEY")
		}
	}

	if ap, err := c.handler.AccessPoint(ctx); err != nil {
		c.log.Warn("access point query failed", "error", err)
	} else {
		info.APSSID = getString(ap, "SSID")
		if c.cfg.IncludeSensitiveData {
			info.APKey = getString(ap, "KEY")
		}
	}

	network, err := c.handler.NetworkInfo(ctx)
	if err != nil {
		return info, fmt.Errorf("fetching network info: %w", err)
	}
	info.OwnerID = getString(network, "OWNERID")
	info.GroupName = getString(network, "GROUPNAME")

	return info, nil
}

// IsConnected reports whether Connect() has completed.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Static returns the device identity captured during Connect().
//
// Credential fields are only populated when the client was configured with
// include_sensitive_data.
func (c *Client) Static() values.Static {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// DeviceID returns the device identifier from the connect sequence.
func (c *Client) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info.DeviceID
}

// Schema returns the mapping document selected during Connect().
func (c *Client) Schema() *schema.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema
}

// AvailableByKind lists the mapped parameter names per kind.
func (c *Client) AvailableByKind() map[string][]string {
	c.mu.Lock()
	sch := c.schema
	c.mu.Unlock()
	if sch == nil {
		return map[string][]string{}
	}

	out := make(map[string][]string, len(schema.Kinds))
	for _, kind := range schema.Kinds {
		out[string(kind)] = sch.ListByKind(kind)
	}
	return out
}

// Instant fetches a fresh raw snapshot and wraps it in a typed accessor.
//
// Returns:
//   - *values.Instant: Accessor over the snapshot, wired for writes
//   - stale: True when the device fetch failed and last-good data was
//     substituted
//   - error: ErrNotConnected, or transport errors when no data is
//     available at all
func (c *Client) Instant(ctx context.Context) (*values.Instant, bool, error) {
	c.mu.Lock()
	connected, sch, deviceID := c.connected, c.schema, c.info.DeviceID
	c.mu.Unlock()
	if !connected {
		return nil, false, ErrNotConnected
	}

	raw, stale, err := c.handler.FetchInstantValues(ctx)
	if err != nil {
		return nil, false, err
	}

	// The device nests the flat value map under devicedata/{device id}.
	deviceRaw, _ := nested(raw, "devicedata", deviceID)
	snap := values.NewSnapshot(deviceRaw)
	return values.NewInstant(deviceID, sch, snap, c.handler, c.log), stale, nil
}

// Reboot sends the device restart command.
func (c *Client) Reboot(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return c.handler.Reboot(ctx)
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// firstDevice extracts the first entry of the debug config DEVICES array.
func firstDevice(debug map[string]any) (map[string]any, bool) {
	devices, ok := debug["DEVICES"].([]any)
	if !ok || len(devices) == 0 {
		return nil, false
	}
	device, ok := devices[0].(map[string]any)
	return device, ok
}

// nested walks two levels of string-keyed maps.
func nested(m map[string]any, keys ...string) (map[string]any, bool) {
	current := m
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
