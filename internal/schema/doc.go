// Package schema models the per-device mapping documents that translate
// between logical parameter names and the device's opaque wire keys.
//
// A dosing controller reports its state as a flat JSON object keyed by
// per-model widget identifiers ("PDPR1H1HAW100_FW539187_w_1eommf39k").
// A mapping document, one per model+firmware combination, names each widget
// and declares how to interpret it:
//
//	parameters:
//	  temperature:
//	    key: w_1eommf39k
//	    kind: sensor
//	  water_meter_unit:
//	    key: w_1eklinki6
//	    kind: select
//	    options:
//	      "0": UNIT_M3
//	    conversion:
//	      UNIT_M3: "m³"
//
// Documents are validated structurally at load time: a malformed descriptor
// fails Parse, never the first decode. Loaded schemas are immutable and safe
// for concurrent readers.
//
// Known documents are embedded in the binary and selected by the model and
// firmware identifiers obtained during the connection handshake:
//
//	s, err := schema.ForDevice("PDPR1H1HAW100", "539187")
package schema
