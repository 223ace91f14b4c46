// Package client ties the device transport, mapping documents and value
// translation together into one connected session.
//
// Connect() runs the full handshake: version exchange, identity and
// network queries, API version gate, and mapping document selection for
// the device's model/firmware pair. Afterwards:
//
//   - Instant() fetches a fresh raw snapshot and wraps it in a typed,
//     writable accessor
//   - Static() returns the device identity captured during Connect()
//   - AvailableByKind() lists the mapped parameter names per kind
//
// The client is safe for concurrent use once connected.
package client
