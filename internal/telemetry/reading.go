package telemetry

import "time"

// Reading is a single soil moisture measurement from the sensor.
// Immutable once constructed by the codec.
type Reading struct {
	// Voltage is the raw sensor voltage.
	Voltage float64

	// Moisture is the moisture level on a 0-100 scale. The protocol does
	// not strictly bound it; it is treated as a percentage.
	Moisture float64

	// ObservedAt is the normalized UTC observation time. A zero value
	// means the observation time is unknown; the codec never produces
	// one (it falls back to receipt time), but the history buffer
	// treats zero timestamps as not-yet-expirable.
	ObservedAt time.Time

	// ValveOpen is the irrigation valve state reported with the reading.
	ValveOpen bool
}

// Snapshot is the external push-fan-out form of a reading.
type Snapshot struct {
	Voltage   float64 `json:"voltage"`
	Moisture  float64 `json:"moisture"`
	Timestamp int64   `json:"timestamp"`
	ValveOpen bool    `json:"valve_open"`
}

// Snapshot converts the reading to its external form, with the
// observation time as canonical UTC epoch seconds.
func (r Reading) Snapshot() Snapshot {
	var ts int64
	if !r.ObservedAt.IsZero() {
		ts = r.ObservedAt.Unix()
	}
	return Snapshot{
		Voltage:   r.Voltage,
		Moisture:  r.Moisture,
		Timestamp: ts,
		ValveOpen: r.ValveOpen,
	}
}

// Status is a decoded system status snapshot from the sensor.
// Status messages are informational: they are forwarded to external
// collaborators and never mutate engine state.
type Status struct {
	System        string `json:"system"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	IPAddress     string `json:"ip"`
	RSSI          int    `json:"rssi"`
}
