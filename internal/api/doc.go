// Package api implements the HTTP REST API and WebSocket server for SoilSense Core.
//
// This package provides:
//   - REST endpoints for soil readings, history, and watering control
//   - WebSocket hub relaying readings, status, and command responses
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The API server sits between clients (dashboard, mobile app) and the
// control engine. Commands flow from the API through the engine to the
// sensor via MQTT, and telemetry flows back through the engine's
// notifier, which broadcasts to WebSocket clients on the "reading",
// "status", and "response" channels.
//
// # Graceful Degradation
//
// The server operates with the broker down — cached reads and WebSocket
// connections work, only device commands fail. Command endpoints report
// the failure in the response body rather than erroring the request.
package api
