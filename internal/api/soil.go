package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/soilsense-core/internal/telemetry"
)

// handleLatestReading returns the most recent soil reading.
//
// If no reading has arrived yet, the sensor is asked for one and the
// request waits briefly for the answer before reporting 404.
func (s *Server) handleLatestReading(w http.ResponseWriter, r *http.Request) {
	reading, ok := s.engine.LatestWait(r.Context())
	if !ok {
		writeNotFound(w, "no reading available")
		return
	}
	writeJSON(w, http.StatusOK, reading.Snapshot())
}

// handleHistory returns buffered readings within the requested window.
//
// Query parameters:
//   - hours: window size in hours (optional; default is the retention period)
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var maxAge time.Duration
	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours <= 0 {
			writeBadRequest(w, "hours must be a positive number")
			return
		}
		maxAge = time.Duration(hours * float64(time.Hour))
	}

	readings := s.engine.History(maxAge)
	snapshots := make([]telemetry.Snapshot, 0, len(readings))
	for _, reading := range readings {
		snapshots = append(snapshots, reading.Snapshot())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(snapshots),
		"readings": snapshots,
	})
}

// handleRequestReading asks the sensor for an immediate reading.
// The reading arrives asynchronously on the data topic.
func (s *Server) handleRequestReading(w http.ResponseWriter, _ *http.Request) {
	err := s.engine.RequestReading()
	writeCommandResult(w, err, "reading requested")
}
