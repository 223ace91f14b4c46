// Package values translates between the device's raw wire representation
// and typed domain values.
//
// The device reports all live state as a flat JSON object keyed by opaque,
// firmware-prefixed wire keys. This package decodes those entries into
// typed readings according to the mapping document (package schema), and
// encodes validated writes back into the device's payload convention.
//
// Core Types:
//   - Snapshot: one immutable fetch of raw device data
//   - Instant: typed, cached, fail-soft accessor over a Snapshot
//   - Static: device identity captured at connect time
//
// Decode rules by kind:
//   - sensor: current value plus normalized unit; label tokens resolved
//     through the conversion table, unmapped tokens pass through
//   - binary_sensor / switch: native booleans, or the device's O/F string
//     convention; alarm labels collapse through the conversion table
//   - number: current value plus live bounds (absMin/absMax/resolution);
//     paired-bounds parameters split their shared range at the midpoint
//   - select: two-stage resolution, option key -> firmware token ->
//     display string
//
// Write rules:
//   - numbers validate against the live bounds of the current snapshot
//     (inclusive range, step grid with a small epsilon)
//   - switches encode to O/F string tokens
//   - selects reverse the two-stage mapping back to a numeric option key
//
// Reads never fail hard: a decode problem logs and reads as "not present".
// Writes report success as a bool. A successful write evicts the cached
// value but does not refresh the snapshot; fetch a fresh accessor to
// observe the new device state.
package values
