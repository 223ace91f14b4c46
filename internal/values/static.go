package values

// Static holds the device identity and network information collected during
// the connect handshake. Unlike Instant values these do not change between
// fetches, so they are captured once per connection.
type Static struct {
	Name         string `json:"name,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	DeviceID     string `json:"device_id,omitempty"`
	Model        string `json:"model,omitempty"`
	ModelID      string `json:"model_id,omitempty"`
	OwnerID      string `json:"owner_id,omitempty"`
	GroupName    string `json:"group_name,omitempty"`
	FWVersion    string `json:"fw_version,omitempty"`
	SWVersion    string `json:"sw_version,omitempty"`
	APIVersion   string `json:"api_version,omitempty"`
	FWCode       string `json:"fw_code,omitempty"`
	MAC          string `json:"mac,omitempty"`
	IP           string `json:"ip,omitempty"`

	// WiFi credentials are only populated when the client is configured
	// to include sensitive data.
	WiFiSSID string `json:"wifi_ssid,omitempty"`
	WiFiKey  string `json:"wifi_key,omitempty"`
	APSSID   string `json:"ap_ssid,omitempty"`
	APKey    string `json:"ap_key,omitempty"`
}

// Sanitized returns a copy with credential fields blanked, safe for logs
// and API responses regardless of client configuration.
func (s Static) Sanitized() Static {
	s.WiFiKey = ""
	s.APKey = ""
	return s
}
