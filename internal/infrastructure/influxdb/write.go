package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteReading writes one decoded device reading to InfluxDB.
//
// This is the primary method for recording water-treatment telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Device identifier (e.g., "SN123456789_DEVICE")
//   - name: Logical parameter name (e.g., "ph", "temperature")
//   - value: The decoded numeric value
//   - unit: Unit string, empty for unit-less readings (pH)
//
// Example:
//
//	client.WriteReading("SN123_DEVICE", "temperature", 25.5, "°C")
//	client.WriteReading("SN123_DEVICE", "ph", 7.2, "")
func (c *Client) WriteReading(deviceID string, name string, value float64, unit string) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"device_id": deviceID,
		"parameter": name,
	}
	if unit != "" {
		tags["unit"] = unit
	}

	point := write.NewPoint(
		"readings",
		tags,
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteState writes a boolean parameter state (switch or binary sensor).
//
// Booleans are stored as 0/1 so they can be graphed alongside readings.
func (c *Client) WriteState(deviceID string, name string, on bool) {
	if !c.IsConnected() {
		return
	}

	v := 0.0
	if on {
		v = 1.0
	}

	point := write.NewPoint(
		"states",
		map[string]string{
			"device_id": deviceID,
			"parameter": name,
		},
		map[string]interface{}{
			"value": v,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
