package watering

import "time"

// Policy is the auto-watering gate: a threshold check and a cooldown
// window collapsed into two stored fields plus a computed veto.
type Policy struct {
	Enabled           bool          `json:"enabled"`
	MoistureThreshold float64       `json:"moisture_threshold"`
	Cooldown          time.Duration `json:"-"`

	// LastTriggeredAt is the zero time until the first successful
	// automatic cycle.
	LastTriggeredAt time.Time `json:"last_triggered_at"`
}

// ShouldTrigger decides whether a reading with the given moisture should
// start an automatic watering cycle at time now.
//
// The cooldown is a hard veto regardless of how dry the soil is; it
// protects the valve and power source from rapid cycling. It is only
// consumed by a successful cycle (the caller updates LastTriggeredAt),
// so a failed publish leaves the controller armed.
func (p Policy) ShouldTrigger(moisture float64, now time.Time) bool {
	if !p.Enabled {
		return false
	}
	if moisture >= p.MoistureThreshold {
		return false // soil sufficiently wet
	}
	if now.Sub(p.LastTriggeredAt) < p.Cooldown {
		return false // still cooling down
	}
	return true
}
