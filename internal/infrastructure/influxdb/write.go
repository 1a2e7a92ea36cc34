package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names for the archived series.
const (
	measurementReading  = "soil_reading"
	measurementWatering = "watering_event"
)

// WriteReading archives a single accepted sensor reading.
//
// The write is non-blocking; points are batched and sent asynchronously.
// The point is timestamped with the reading's normalized observation
// time, not the write time, so delayed telemetry lands where it belongs.
//
// Parameters:
//   - voltage: The raw sensor voltage
//   - moisture: The moisture percentage (0-100 scale)
//   - valveOpen: Whether the irrigation valve was reported open
//   - observedAt: The normalized UTC observation time
func (c *Client) WriteReading(voltage, moisture float64, valveOpen bool, observedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	valve := 0.0
	if valveOpen {
		valve = 1.0
	}

	point := write.NewPoint(
		measurementReading,
		map[string]string{
			"source": "mqtt",
		},
		map[string]interface{}{
			"voltage":    voltage,
			"moisture":   moisture,
			"valve_open": valve,
		},
		observedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteWateringEvent archives a single watering event.
//
// Parameters:
//   - kind: How the cycle was initiated (manual, automatic, detected)
//   - moistureBefore: The moisture percentage when the cycle began
func (c *Client) WriteWateringEvent(kind string, moistureBefore float64) {
	c.WritePoint(
		measurementWatering,
		map[string]string{
			"kind": kind,
		},
		map[string]interface{}{
			"moisture_before": moistureBefore,
		},
	)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit WriteReading, such as
// system status samples.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
