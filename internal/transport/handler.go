package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/pooldose-core/internal/infrastructure/config"
	"github.com/nerrad567/pooldose-core/internal/infrastructure/logging"
)

// Device API endpoint paths.
const (
	pathCoreParams    = "/js_libs/params.js"
	pathDebugConfig   = "/api/v1/debug/config"
	pathInfoRelease   = "/api/v1/infoRelease"
	pathNetworkInfo   = "/api/v1/network/info/getInfo"
	pathWiFiStation   = "/api/v1/network/wifi/getStation"
	pathAccessPoint   = "/api/v1/network/wifi/getAccessPoint"
	pathInstantValues = "/api/v1/DWI/getInstantValues"
	pathSetValues     = "/api/v1/DWI/setInstantValues"
	pathReboot        = "/api/v1/system/reboot"
)

// params.js is a JavaScript object literal, not JSON; the two fields we
// need are extracted by pattern match the same way the vendor's own web
// UI reads them.
var (
	reSoftwareVersion = regexp.MustCompile(`softwareVersion\s*:\s*["']([^"']+)["']`)
	reAPIVersion      = regexp.MustCompile(`apiversion\s*:\s*["']([^"']+)["']`)
)

// Handler speaks the device's HTTP API.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Handler struct {
	host    string
	port    int
	useTLS  bool
	timeout time.Duration
	client  *http.Client
	log     *logging.Logger

	mu              sync.Mutex
	connected       bool
	softwareVersion string
	apiVersion      string
	lastData        map[string]any
}

// New creates a Handler for the configured device.
//
// Parameters:
//   - cfg: Device connection settings (host, port, TLS, timeout)
//   - log: Logger for request diagnostics
//
// Returns:
//   - *Handler: Handler ready for Connect()
func New(cfg config.DeviceConfig, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Default()
	}

	port := cfg.Port
	if port == 0 {
		if cfg.TLS {
			port = 443
		} else {
			port = 80
		}
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	if cfg.TLS && !cfg.TLSVerify {
		// Devices ship self-signed certificates.
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}

	return &Handler{
		host:    cfg.Host,
		port:    port,
		useTLS:  cfg.TLS,
		timeout: timeout,
		client:  client,
		log:     log.With("component", "transport", "device_host", cfg.Host),
	}
}

// Connect probes the device and performs the version handshake.
//
// The handshake fetches params.js and extracts the firmware's software and
// API versions; both are available afterwards via SoftwareVersion() and
// APIVersion().
//
// Returns:
//   - error: ErrHostUnreachable if the TCP probe fails, ErrHandshakeFailed
//     if params.js cannot be fetched or parsed
func (h *Handler) Connect(ctx context.Context) error {
	if err := h.probe(); err != nil {
		return err
	}

	body, err := h.request(ctx, http.MethodGet, pathCoreParams, nil)
	if err != nil {
		return fmt.Errorf("%w: fetching core params: %v", ErrHandshakeFailed, err)
	}

	sw := reSoftwareVersion.FindSubmatch(body)
	api := reAPIVersion.FindSubmatch(body)
	if sw == nil || api == nil {
		return fmt.Errorf("%w: params.js missing softwareVersion or apiversion", ErrHandshakeFailed)
	}

	h.mu.Lock()
	h.softwareVersion = string(sw[1])
	h.apiVersion = string(api[1])
	h.connected = true
	h.mu.Unlock()

	h.log.Info("device handshake complete",
		"software_version", string(sw[1]),
		"api_version", string(api[1]))
	return nil
}

// probe checks TCP reachability on the configured port.
func (h *Handler) probe() error {
	addr := net.JoinHostPort(h.host, strconv.Itoa(h.port))
	conn, err := net.DialTimeout("tcp", addr, h.timeout)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrHostUnreachable, addr, err)
	}
	conn.Close()
	return nil
}

// IsConnected reports whether the handshake has completed.
func (h *Handler) IsConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// SoftwareVersion returns the firmware software version from the handshake.
func (h *Handler) SoftwareVersion() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.softwareVersion
}

// APIVersion returns the device API version from the handshake.
func (h *Handler) APIVersion() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.apiVersion
}

// FetchInstantValues retrieves the full raw value snapshot.
//
// On success the snapshot is kept as last-good data. When a fetch fails
// and last-good data exists, it is returned with stale=true so a short
// device outage degrades to stale reads instead of a hard error.
//
// Returns:
//   - map: Raw snapshot keyed by full wire key
//   - stale: True when the fetch failed and cached data was substituted
//   - error: ErrNoData when no data and no fallback is available
func (h *Handler) FetchInstantValues(ctx context.Context) (map[string]any, bool, error) {
	data, err := h.requestJSON(ctx, http.MethodPost, pathInstantValues, nil)
	if err != nil {
		h.mu.Lock()
		last := h.lastData
		h.mu.Unlock()
		if last != nil {
			h.log.Warn("instant values fetch failed, serving last-good data", "error", err)
			return last, true, nil
		}
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, fmt.Errorf("%w: instant values", ErrNoData)
	}

	h.mu.Lock()
	h.lastData = data
	h.mu.Unlock()
	return data, false, nil
}

// SetValue writes one value to the device.
//
// The device expects a per-device envelope with an array-wrapped value and
// an explicit type discriminator:
//
//	{"DEVICE_ID": {"WIRE_KEY": [{"value": v, "type": "NUMBER"}]}}
//
// Parameters:
//   - deviceID: Device identifier from the connect sequence
//   - wireKey: Full (prefixed) wire key
//   - value: Encoded payload (scalar, token string, or [min, max] pair)
//   - wireType: "NUMBER" or "STRING"
func (h *Handler) SetValue(ctx context.Context, deviceID, wireKey string, value any, wireType string) error {
	payload := map[string]any{
		deviceID: map[string]any{
			wireKey: []map[string]any{
				{"value": value, "type": wireType},
			},
		},
	}
	if _, err := h.request(ctx, http.MethodPost, pathSetValues, payload); err != nil {
		return err
	}
	return nil
}

// DebugConfig fetches the device's debug configuration, which carries its
// identity block (name, serial, model, firmware code).
func (h *Handler) DebugConfig(ctx context.Context) (map[string]any, error) {
	return h.requestJSON(ctx, http.MethodGet, pathDebugConfig, nil)
}

// InfoRelease fetches release metadata for a software version.
func (h *Handler) InfoRelease(ctx context.Context, swVersion string) (map[string]any, error) {
	return h.requestJSON(ctx, http.MethodPost, pathInfoRelease, map[string]any{
		"SOFTWAREVERSION": swVersion,
	})
}

// NetworkInfo fetches the device's network information (MAC, IP).
func (h *Handler) NetworkInfo(ctx context.Context) (map[string]any, error) {
	return h.requestJSON(ctx, http.MethodPost, pathNetworkInfo, nil)
}

// WiFiStation fetches the device's WiFi station configuration.
func (h *Handler) WiFiStation(ctx context.Context) (map[string]any, error) {
	return h.requestJSON(ctx, http.MethodPost, pathWiFiStation, nil)
}

// AccessPoint fetches the device's access point configuration.
func (h *Handler) AccessPoint(ctx context.Context) (map[string]any, error) {
	return h.requestJSON(ctx, http.MethodPost, pathAccessPoint, nil)
}

// Reboot sends the device restart command.
func (h *Handler) Reboot(ctx context.Context) error {
	_, err := h.request(ctx, http.MethodPost, pathReboot, nil)
	return err
}

// requestJSON performs a request and decodes the JSON object response.
func (h *Handler) requestJSON(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	body, err := h.request(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %v", ErrRequestFailed, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, path)
	}
	return data, nil
}

// request performs one HTTP request against the device and returns the
// raw response body.
func (h *Handler) request(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding %s payload: %v", ErrRequestFailed, path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.buildURL(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRequestFailed, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrRequestFailed, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrRequestFailed, path, err)
	}
	return body, nil
}

// buildURL assembles the device URL for a path, omitting the port when it
// matches the scheme default.
func (h *Handler) buildURL(path string) string {
	scheme := "http"
	defaultPort := 80
	if h.useTLS {
		scheme = "https"
		defaultPort = 443
	}
	if h.port != defaultPort {
		return fmt.Sprintf("%s://%s:%d%s", scheme, h.host, h.port, path)
	}
	return fmt.Sprintf("%s://%s%s", scheme, h.host, path)
}
