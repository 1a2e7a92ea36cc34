package engine

import (
	"context"
	"time"

	"github.com/nerrad567/soilsense-core/internal/telemetry"
	"github.com/nerrad567/soilsense-core/internal/watering"
)

// Latest returns the most recent reading, or false if nothing has
// arrived since startup.
func (e *Engine) Latest() (telemetry.Reading, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.latest == nil {
		return telemetry.Reading{}, false
	}
	return *e.latest, true
}

// LatestWait returns the most recent reading, actively requesting one
// from the sensor if none is cached yet. The request waits up to one
// second for the sensor to answer before giving up.
func (e *Engine) LatestWait(ctx context.Context) (telemetry.Reading, bool) {
	if r, ok := e.Latest(); ok {
		return r, true
	}

	if err := e.link.PublishCommand(telemetry.CommandGetReading.String()); err != nil {
		e.logger.Warn("reading request failed", "error", err)
		return telemetry.Reading{}, false
	}

	select {
	case <-ctx.Done():
	case <-time.After(refreshWait):
	}
	return e.Latest()
}

// History returns buffered readings observed within maxAge of now, in
// arrival order. A non-positive maxAge means the configured retention
// period; the buffer clamps oversized requests.
func (e *Engine) History(maxAge time.Duration) []telemetry.Reading {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Query(e.clock(), maxAge)
}

// maxLogQuery caps watering log queries regardless of what the caller
// asks for.
const maxLogQuery = 50

// WateringLog returns up to n watering records, newest first.
// Requests beyond 50 records (or non-positive n) return 50.
func (e *Engine) WateringLog(n int) []watering.Record {
	if n <= 0 || n > maxLogQuery {
		n = maxLogQuery
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wateringLog.Recent(n)
}

// AutoWateringSettings returns a copy of the current auto-watering policy.
func (e *Engine) AutoWateringSettings() watering.Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy
}

// SetAutoWatering enables or disables automatic watering and returns
// the updated policy. Threshold and cooldown stay as configured; only
// the arming state is runtime-mutable.
func (e *Engine) SetAutoWatering(enabled bool) watering.Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy.Enabled = enabled
	e.logger.Info("auto-watering setting changed", "enabled", enabled)
	return e.policy
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		ReadingsProcessed: e.readingsProcessed,
		DecodeErrors:      e.decodeErrors,
		StatusMessages:    e.statusMessages,
		CommandResponses:  e.commandResponses,
		BufferedReadings:  e.history.Len(),
		WateringRecords:   e.wateringLog.Len(),
		AutomaticCycles:   e.automaticCycles,
		ManualCycles:      e.manualCycles,
		DetectedWaterings: e.detectedWaterings,
	}
}
