package api

import (
	"github.com/nerrad567/soilsense-core/internal/telemetry"
)

// Events adapts the WebSocket hub to the engine's push event interface.
// Each event type maps to one subscription channel.
type Events struct {
	hub *Hub
}

// NewEvents creates the hub adapter.
func NewEvents(hub *Hub) *Events {
	return &Events{hub: hub}
}

// ReadingProcessed broadcasts a soil reading snapshot.
func (e *Events) ReadingProcessed(snapshot telemetry.Snapshot) {
	e.hub.Broadcast(ChannelReading, snapshot)
}

// StatusReceived broadcasts a sensor status snapshot.
func (e *Events) StatusReceived(status telemetry.Status) {
	e.hub.Broadcast(ChannelStatus, status)
}

// CommandResponse broadcasts a raw command acknowledgement.
func (e *Events) CommandResponse(payload string) {
	e.hub.Broadcast(ChannelResponse, map[string]string{"message": payload})
}
