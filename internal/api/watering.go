package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// defaultLogLimit is how many watering records are returned when the
// client does not ask for a specific count.
const defaultLogLimit = 50

// autoWateringResponse is the wire form of the auto-watering settings.
type autoWateringResponse struct {
	Enabled           bool       `json:"enabled"`
	MoistureThreshold float64    `json:"moisture_threshold"`
	CooldownMinutes   int        `json:"cooldown_minutes"`
	LastTriggeredAt   *time.Time `json:"last_triggered_at,omitempty"`
}

// handleWateringLog returns recent watering records, newest first.
//
// Query parameters:
//   - limit: maximum number of records (optional; default 50)
func (s *Server) handleWateringLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records := s.engine.WateringLog(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

// handleGetAutoWatering returns the current auto-watering settings.
func (s *Server) handleGetAutoWatering(w http.ResponseWriter, _ *http.Request) {
	policy := s.engine.AutoWateringSettings()

	resp := autoWateringResponse{
		Enabled:           policy.Enabled,
		MoistureThreshold: policy.MoistureThreshold,
		CooldownMinutes:   int(policy.Cooldown.Minutes()),
	}
	if !policy.LastTriggeredAt.IsZero() {
		t := policy.LastTriggeredAt
		resp.LastTriggeredAt = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetAutoWatering enables or disables automatic watering.
//
// Request body: {"enabled": true|false}
func (s *Server) handleSetAutoWatering(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeBadRequest(w, "body must be {\"enabled\": true|false}")
		return
	}

	policy := s.engine.SetAutoWatering(*req.Enabled)
	resp := autoWateringResponse{
		Enabled:           policy.Enabled,
		MoistureThreshold: policy.MoistureThreshold,
		CooldownMinutes:   int(policy.Cooldown.Minutes()),
	}
	if !policy.LastTriggeredAt.IsZero() {
		t := policy.LastTriggeredAt
		resp.LastTriggeredAt = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleManualWater runs one watering cycle immediately.
func (s *Server) handleManualWater(w http.ResponseWriter, _ *http.Request) {
	err := s.engine.ManualWater()
	writeCommandResult(w, err, "watering cycle complete")
}
