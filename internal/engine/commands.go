package engine

import (
	"github.com/nerrad567/soilsense-core/internal/telemetry"
	"github.com/nerrad567/soilsense-core/internal/watering"
)

// ManualWater runs one externally-requested watering cycle and records
// it. The cycle runs synchronously so the caller learns whether the
// commands reached the broker. Returns ErrWateringInProgress if a
// cycle is already running.
func (e *Engine) ManualWater() error {
	e.mu.Lock()
	if e.wateringInFlight {
		e.mu.Unlock()
		return ErrWateringInProgress
	}
	e.wateringInFlight = true
	var before float64
	if e.latest != nil {
		before = e.latest.Moisture
	}
	e.mu.Unlock()

	return e.runCycle(watering.KindManual, before)
}

// SetValve opens or closes the irrigation valve directly, without the
// settle-and-close cycle or a watering record. Intended for raw device
// control; the detector will still log a moisture rise it causes.
func (e *Engine) SetValve(open bool) error {
	cmd := telemetry.CommandValveOff
	if open {
		cmd = telemetry.CommandValveOn
	}
	return e.link.PublishCommand(cmd.String())
}

// RequestReading asks the sensor for an immediate moisture reading.
// The answer arrives on the data topic like any other reading.
func (e *Engine) RequestReading() error {
	return e.link.PublishCommand(telemetry.CommandGetReading.String())
}

// RequestStatus asks the sensor for a system status snapshot.
// The answer arrives on the status topic.
func (e *Engine) RequestStatus() error {
	return e.link.PublishCommand(telemetry.CommandGetStatus.String())
}

// LinkConnected reports whether the sensor link currently has a broker
// connection.
func (e *Engine) LinkConnected() bool {
	return e.link.IsConnected()
}
