// Package influxdb records decoded device readings to InfluxDB v2.
//
// Writes are batched and non-blocking; a lost InfluxDB connection never
// stalls the poll loop. The integration is optional and disabled unless
// configured:
//
//	influxdb:
//	  enabled: true
//	  url: "http://localhost:8086"
//	  token: "..."        # or POOLDOSE_INFLUXDB_TOKEN
//	  org: "home"
//	  bucket: "pooldose"
//
// Telemetry is a side output of the bridge poll loop. The value engine
// itself never persists state; history lives in InfluxDB only.
package influxdb
