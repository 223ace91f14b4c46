package transport

import "errors"

// Domain errors for device communication.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, transport.ErrHostUnreachable) {
//	    // device is offline or the network path is down
//	}
var (
	// ErrHostUnreachable is returned when the device does not accept a TCP
	// connection on the configured port.
	ErrHostUnreachable = errors.New("transport: host unreachable")

	// ErrHandshakeFailed is returned when the connect handshake cannot
	// extract the software and API versions from the device.
	ErrHandshakeFailed = errors.New("transport: handshake failed")

	// ErrRequestFailed is returned when a device request fails at the HTTP
	// level (transport error or non-2xx status).
	ErrRequestFailed = errors.New("transport: request failed")

	// ErrNoData is returned when the device responds successfully but with
	// an empty payload.
	ErrNoData = errors.New("transport: no data in response")

	// ErrNotConnected is returned when an operation requires a completed
	// handshake.
	ErrNotConnected = errors.New("transport: not connected")
)
