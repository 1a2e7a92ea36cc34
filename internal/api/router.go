package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Soil readings
		r.Route("/soil", func(r chi.Router) {
			r.Get("/latest", s.handleLatestReading)
			r.Get("/history", s.handleHistory)
			r.Post("/request", s.handleRequestReading)
		})

		// Watering control
		r.Route("/watering", func(r chi.Router) {
			r.Get("/log", s.handleWateringLog)
			r.Get("/auto", s.handleGetAutoWatering)
			r.Put("/auto", s.handleSetAutoWatering)
			r.Post("/manual", s.handleManualWater)
		})

		// Raw device control
		r.Post("/valve", s.handleSetValve)
		r.Post("/status/request", s.handleRequestStatus)

		// WebSocket push channel
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
