package watering

import (
	"testing"
	"time"
)

func TestShouldTrigger_CooldownSequence(t *testing.T) {
	start := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	p := Policy{
		Enabled:           true,
		MoistureThreshold: 30.0,
		Cooldown:          30 * time.Minute,
	}

	// Dry soil fires immediately.
	if !p.ShouldTrigger(20.0, start) {
		t.Fatal("dry reading at t=0 should trigger")
	}
	p.LastTriggeredAt = start

	// Even drier soil 10 minutes later is vetoed by the cooldown.
	if p.ShouldTrigger(10.0, start.Add(10*time.Minute)) {
		t.Error("reading at t=10m should be vetoed by cooldown")
	}

	// Past the cooldown the controller is armed again.
	if !p.ShouldTrigger(10.0, start.Add(31*time.Minute)) {
		t.Error("reading at t=31m should trigger")
	}
}

func TestShouldTrigger_Gates(t *testing.T) {
	now := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		policy   Policy
		moisture float64
		want     bool
	}{
		{
			name:     "disabled",
			policy:   Policy{Enabled: false, MoistureThreshold: 30.0, Cooldown: 30 * time.Minute},
			moisture: 5.0,
			want:     false,
		},
		{
			name:     "moisture at threshold",
			policy:   Policy{Enabled: true, MoistureThreshold: 30.0, Cooldown: 30 * time.Minute},
			moisture: 30.0,
			want:     false,
		},
		{
			name:     "moisture just below threshold",
			policy:   Policy{Enabled: true, MoistureThreshold: 30.0, Cooldown: 30 * time.Minute},
			moisture: 29.9,
			want:     true,
		},
		{
			name:     "never triggered before",
			policy:   Policy{Enabled: true, MoistureThreshold: 30.0, Cooldown: 24 * time.Hour},
			moisture: 10.0,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.ShouldTrigger(tt.moisture, now); got != tt.want {
				t.Errorf("ShouldTrigger(%v) = %v, want %v", tt.moisture, got, tt.want)
			}
		})
	}
}
