package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Naive timestamp layouts accepted from the sensor, tried in order.
// The sensor firmware emits local wall-clock time with no zone marker.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// wireReading is the on-the-wire shape of a reading payload.
type wireReading struct {
	Type      string          `json:"type"`
	Voltage   float64         `json:"voltage"`
	Moisture  float64         `json:"moisture"`
	Timestamp json.RawMessage `json:"timestamp"`
	ValveOpen bool            `json:"valve_state"`
}

// DecodeReading parses a reading payload from the data topic.
//
// The timestamp field may be epoch seconds (number), an RFC 3339 string,
// or a naive local-time string; naive timestamps are interpreted as local
// time and normalized to UTC. A missing or unparseable timestamp falls
// back to receivedAt rather than failing the decode.
//
// A malformed payload yields an error wrapping ErrMalformedPayload; the
// caller is expected to log it and drop the message.
func DecodeReading(payload []byte, receivedAt time.Time) (Reading, error) {
	var wire wireReading
	if err := unmarshalStrict(payload, &wire); err != nil {
		return Reading{}, fmt.Errorf("%w: reading: %w", ErrMalformedPayload, err)
	}

	return Reading{
		Voltage:    wire.Voltage,
		Moisture:   wire.Moisture,
		ObservedAt: parseTimestamp(wire.Timestamp, receivedAt),
		ValveOpen:  wire.ValveOpen,
	}, nil
}

// DecodeStatus parses a system status payload from the status topic.
func DecodeStatus(payload []byte) (Status, error) {
	var status Status
	if err := unmarshalStrict(payload, &status); err != nil {
		return Status{}, fmt.Errorf("%w: status: %w", ErrMalformedPayload, err)
	}
	return status, nil
}

// unmarshalStrict decodes JSON rejecting empty and non-object payloads.
func unmarshalStrict(payload []byte, v any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty payload")
	}
	return json.Unmarshal(trimmed, v)
}

// parseTimestamp normalizes the wire timestamp to UTC.
//
// Accepted forms, in order: epoch seconds (integer or fractional),
// RFC 3339, then the naive layouts in local time. Anything else yields
// the receipt time.
func parseTimestamp(raw json.RawMessage, receivedAt time.Time) time.Time {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return receivedAt.UTC()
	}

	// Numeric epoch seconds.
	if trimmed[0] != '"' {
		if secs, err := strconv.ParseFloat(string(trimmed), 64); err == nil && secs > 0 {
			whole := int64(secs)
			frac := secs - float64(whole)
			return time.Unix(whole, int64(frac*float64(time.Second))).UTC()
		}
		return receivedAt.UTC()
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return receivedAt.UTC()
	}
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UTC()
		}
	}

	return receivedAt.UTC()
}
