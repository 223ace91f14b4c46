package client

import "errors"

// Domain errors for the device client.
var (
	// ErrNotConnected is returned when an operation requires a completed
	// Connect().
	ErrNotConnected = errors.New("client: not connected")

	// ErrUnsupportedAPIVersion is returned when the device reports an API
	// version this client does not speak.
	ErrUnsupportedAPIVersion = errors.New("client: unsupported device API version")

	// ErrMissingIdentity is returned when the device's debug configuration
	// lacks the identity block needed to select a mapping document.
	ErrMissingIdentity = errors.New("client: device identity incomplete")
)
