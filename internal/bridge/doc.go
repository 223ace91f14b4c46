// Package bridge mirrors the device's decoded live values onto MQTT.
//
// A poll loop fetches a snapshot every poll interval, decodes it through
// the translation engine, and publishes each changed value as a retained
// message on pooldose/state/{device}/{parameter}. Device reachability is
// reflected on the retained availability topic.
//
// Writable parameters accept commands on pooldose/command/{device}/{name};
// payloads are validated by the translation engine before anything reaches
// the device, and a successful write triggers an immediate re-poll so
// state topics converge quickly.
//
// When an InfluxDB client is wired in, numeric readings and boolean states
// from each fresh (non-stale) snapshot are also written as telemetry.
package bridge
