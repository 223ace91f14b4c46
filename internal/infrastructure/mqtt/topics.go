package mqtt

import "fmt"

// Topic prefixes for the pooldose MQTT hierarchy.
//
// All topics use the flat scheme: pooldose/{category}/{device}/{parameter}
const (
	// TopicPrefix is the base for all pooldose topics.
	TopicPrefix = "pooldose"

	// TopicPrefixSystem is the base for daemon-level system topics.
	TopicPrefixSystem = "pooldose/system"
)

// Topics provides builders for pooldose MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.State("SN123_DEVICE", "ph")
//	// Returns: "pooldose/state/SN123_DEVICE/ph"
type Topics struct{}

// State returns the topic for decoded parameter state updates.
//
// Example: pooldose/state/SN123_DEVICE/ph
func (Topics) State(deviceID, name string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, deviceID, name)
}

// Command returns the topic for inbound parameter write commands.
//
// Example: pooldose/command/SN123_DEVICE/ph_target
func (Topics) Command(deviceID, name string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, deviceID, name)
}

// CommandWildcard returns the subscription pattern matching all command
// topics for one device.
//
// Example: pooldose/command/SN123_DEVICE/+
func (Topics) CommandWildcard(deviceID string) string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, deviceID)
}

// Availability returns the per-device availability topic.
//
// Example: pooldose/availability/SN123_DEVICE
func (Topics) Availability(deviceID string) string {
	return fmt.Sprintf("%s/availability/%s", TopicPrefix, deviceID)
}

// SystemStatus returns the daemon status topic used for LWT and
// online/offline announcements.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
