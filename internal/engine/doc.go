// Package engine is the sensor state and irrigation control core.
//
// The engine subscribes to the sensor's MQTT topics, maintains the
// latest reading and a retention-bounded history buffer, classifies
// moisture rises as watering events, and runs the threshold/cooldown
// auto-watering controller. It exposes queries and commands for the
// HTTP API and pushes events to the websocket hub through the Notifier
// interface.
//
// A single mutex guards all state. Message handlers hold it only for
// the in-memory mutation; fan-out, archival, and watering command
// publishes happen outside the lock so a slow broker or archive never
// stalls ingestion.
package engine
