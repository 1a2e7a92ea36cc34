package api

import (
	"encoding/json"
	"net/http"
)

// handleSetValve opens or closes the irrigation valve directly.
//
// Request body: {"open": true|false}
func (s *Server) handleSetValve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Open *bool `json:"open"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Open == nil {
		writeBadRequest(w, "body must be {\"open\": true|false}")
		return
	}

	err := s.engine.SetValve(*req.Open)
	if *req.Open {
		writeCommandResult(w, err, "valve opened")
	} else {
		writeCommandResult(w, err, "valve closed")
	}
}

// handleRequestStatus asks the sensor for a system status snapshot.
// The answer arrives asynchronously on the status topic.
func (s *Server) handleRequestStatus(w http.ResponseWriter, _ *http.Request) {
	err := s.engine.RequestStatus()
	writeCommandResult(w, err, "status requested")
}
