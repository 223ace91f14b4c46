// Package transport implements the HTTP protocol spoken by the dosing
// device's embedded web server.
//
// The device exposes a small JSON-over-POST API plus one JavaScript asset
// (params.js) that carries the firmware's software and API versions. The
// Handler wraps all of it:
//
//   - Connect: TCP reachability probe plus the params.js handshake
//   - FetchInstantValues: the full raw value snapshot, with last-good-data
//     fallback when a poll fails mid-session
//   - SetValue: the single-value write envelope
//   - DebugConfig / NetworkInfo / WiFiStation / AccessPoint: device
//     identity and network queries used during the connect sequence
//   - Reboot: device restart
//
// The Handler is safe for concurrent use. It keeps the last successfully
// fetched snapshot so short device outages degrade to stale reads instead
// of hard failures; callers are told when data is stale.
package transport
