package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/nerrad567/pooldose-core/internal/infrastructure/config"
)

const testParamsJS = `
var params = {
    softwareVersion: 'v1.2.3',
    apiversion: 'v1/',
    other: 'ignored'
};
`

// newTestHandler points a Handler at an httptest server.
func newTestHandler(t *testing.T, ts *httptest.Server) *Handler {
	t.Helper()
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	return New(config.DeviceConfig{
		Host:    u.Hostname(),
		Port:    port,
		Timeout: 5,
	}, nil)
}

func TestConnect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/js_libs/params.js" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testParamsJS))
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)
	if err := h.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !h.IsConnected() {
		t.Error("IsConnected() = false after successful Connect()")
	}
	if got := h.SoftwareVersion(); got != "v1.2.3" {
		t.Errorf("SoftwareVersion() = %q, want v1.2.3", got)
	}
	if got := h.APIVersion(); got != "v1/" {
		t.Errorf("APIVersion() = %q, want v1/", got)
	}
}

func TestConnect_MissingParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("var params = {};"))
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)
	if err := h.Connect(context.Background()); !errors.Is(err, ErrHandshakeFailed) {
		t.Errorf("Connect() error = %v, want ErrHandshakeFailed", err)
	}
	if h.IsConnected() {
		t.Error("IsConnected() = true after failed handshake")
	}
}

func TestConnect_HostUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h := newTestHandler(t, ts)
	ts.Close()

	if err := h.Connect(context.Background()); !errors.Is(err, ErrHostUnreachable) {
		t.Errorf("Connect() error = %v, want ErrHostUnreachable", err)
	}
}

func TestFetchInstantValues(t *testing.T) {
	fail := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "device busy", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"PDPR1H1HAW100_FW539187_w_temp": map[string]any{"current": 27.5},
		})
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)

	data, stale, err := h.FetchInstantValues(context.Background())
	if err != nil {
		t.Fatalf("FetchInstantValues() error = %v", err)
	}
	if stale {
		t.Error("stale = true on successful fetch")
	}
	if _, ok := data["PDPR1H1HAW100_FW539187_w_temp"]; !ok {
		t.Error("fetched data missing expected wire key")
	}

	// Device outage: the previous snapshot is served and flagged stale.
	fail = true
	data, stale, err = h.FetchInstantValues(context.Background())
	if err != nil {
		t.Fatalf("FetchInstantValues() with fallback error = %v", err)
	}
	if !stale {
		t.Error("stale = false when serving last-good data")
	}
	if _, ok := data["PDPR1H1HAW100_FW539187_w_temp"]; !ok {
		t.Error("last-good data missing expected wire key")
	}
}

func TestFetchInstantValues_NoFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "device busy", http.StatusInternalServerError)
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)
	if _, _, err := h.FetchInstantValues(context.Background()); !errors.Is(err, ErrRequestFailed) {
		t.Errorf("FetchInstantValues() error = %v, want ErrRequestFailed", err)
	}
}

func TestSetValue(t *testing.T) {
	var got map[string]map[string][]map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/DWI/setInstantValues" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)
	err := h.SetValue(context.Background(), "TESTDEVICE", "PDPR1H1HAW100_FW539187_w_ph", 7.2, "NUMBER")
	if err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	entries := got["TESTDEVICE"]["PDPR1H1HAW100_FW539187_w_ph"]
	if len(entries) != 1 {
		t.Fatalf("payload entries = %d, want 1", len(entries))
	}
	if entries[0]["value"] != 7.2 || entries[0]["type"] != "NUMBER" {
		t.Errorf("payload entry = %v, want value 7.2 type NUMBER", entries[0])
	}
}

func TestSetValue_DeviceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rejected", http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)
	err := h.SetValue(context.Background(), "TESTDEVICE", "key", 1.0, "NUMBER")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("SetValue() error = %v, want ErrRequestFailed", err)
	}
}

func TestDebugConfig(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/debug/config" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"DEVICE_NAME": "Pool Device",
			"MODEL_ID":    "PDPR1H1HAW100",
			"FW_CODE":     "FW539187",
		})
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)
	data, err := h.DebugConfig(context.Background())
	if err != nil {
		t.Fatalf("DebugConfig() error = %v", err)
	}
	if data["MODEL_ID"] != "PDPR1H1HAW100" {
		t.Errorf("MODEL_ID = %v, want PDPR1H1HAW100", data["MODEL_ID"])
	}
}

func TestRequestJSON_EmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	h := newTestHandler(t, ts)
	if _, err := h.NetworkInfo(context.Background()); !errors.Is(err, ErrNoData) {
		t.Errorf("NetworkInfo() error = %v, want ErrNoData", err)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DeviceConfig
		want string
	}{
		{"default http port", config.DeviceConfig{Host: "10.0.0.5", Timeout: 5}, "http://10.0.0.5/x"},
		{"custom port", config.DeviceConfig{Host: "10.0.0.5", Port: 8080, Timeout: 5}, "http://10.0.0.5:8080/x"},
		{"default https port", config.DeviceConfig{Host: "10.0.0.5", TLS: true, Timeout: 5}, "https://10.0.0.5/x"},
		{"custom https port", config.DeviceConfig{Host: "10.0.0.5", TLS: true, Port: 8443, Timeout: 5}, "https://10.0.0.5:8443/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.cfg, nil)
			if got := h.buildURL("/x"); got != tt.want {
				t.Errorf("buildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
