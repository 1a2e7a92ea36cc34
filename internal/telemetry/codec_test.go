package telemetry

import (
	"errors"
	"testing"
	"time"
)

var receiptTime = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestDecodeReading_EpochTimestamp(t *testing.T) {
	payload := []byte(`{"type":"reading","voltage":1.82,"moisture":42.5,"timestamp":1754049600,"valve_state":true}`)

	r, err := DecodeReading(payload, receiptTime)
	if err != nil {
		t.Fatalf("DecodeReading() error = %v", err)
	}

	if r.Voltage != 1.82 {
		t.Errorf("Voltage = %v, want 1.82", r.Voltage)
	}
	if r.Moisture != 42.5 {
		t.Errorf("Moisture = %v, want 42.5", r.Moisture)
	}
	if !r.ValveOpen {
		t.Error("ValveOpen = false, want true")
	}
	if got := r.ObservedAt.Unix(); got != 1754049600 {
		t.Errorf("ObservedAt.Unix() = %d, want 1754049600", got)
	}
	if r.ObservedAt.Location() != time.UTC {
		t.Errorf("ObservedAt location = %v, want UTC", r.ObservedAt.Location())
	}
}

func TestDecodeReading_RFC3339Timestamp(t *testing.T) {
	payload := []byte(`{"voltage":2.1,"moisture":33.0,"timestamp":"2026-08-01T10:30:00+02:00"}`)

	r, err := DecodeReading(payload, receiptTime)
	if err != nil {
		t.Fatalf("DecodeReading() error = %v", err)
	}

	want := time.Date(2026, 8, 1, 8, 30, 0, 0, time.UTC)
	if !r.ObservedAt.Equal(want) {
		t.Errorf("ObservedAt = %v, want %v", r.ObservedAt, want)
	}
}

func TestDecodeReading_NaiveTimestampIsLocal(t *testing.T) {
	payload := []byte(`{"voltage":2.1,"moisture":33.0,"timestamp":"2026-08-01 10:30:00"}`)

	r, err := DecodeReading(payload, receiptTime)
	if err != nil {
		t.Fatalf("DecodeReading() error = %v", err)
	}

	// Naive timestamps are interpreted in local time, then normalized.
	want := time.Date(2026, 8, 1, 10, 30, 0, 0, time.Local).UTC()
	if !r.ObservedAt.Equal(want) {
		t.Errorf("ObservedAt = %v, want %v", r.ObservedAt, want)
	}
}

func TestDecodeReading_TimestampFallback(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing", `{"voltage":1.0,"moisture":20.0}`},
		{"null", `{"voltage":1.0,"moisture":20.0,"timestamp":null}`},
		{"garbage string", `{"voltage":1.0,"moisture":20.0,"timestamp":"yesterdayish"}`},
		{"negative epoch", `{"voltage":1.0,"moisture":20.0,"timestamp":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeReading([]byte(tt.payload), receiptTime)
			if err != nil {
				t.Fatalf("DecodeReading() error = %v", err)
			}
			if !r.ObservedAt.Equal(receiptTime) {
				t.Errorf("ObservedAt = %v, want receipt time %v", r.ObservedAt, receiptTime)
			}
		})
	}
}

func TestDecodeReading_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not json", "voltage=1.8"},
		{"truncated", `{"voltage":1.8,`},
		{"wrong field type", `{"voltage":"high","moisture":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReading([]byte(tt.payload), receiptTime)
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("DecodeReading() error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestDecodeStatus(t *testing.T) {
	payload := []byte(`{"system":"ok","uptime_seconds":86400,"ip":"192.168.1.50","rssi":-61}`)

	s, err := DecodeStatus(payload)
	if err != nil {
		t.Fatalf("DecodeStatus() error = %v", err)
	}

	if s.System != "ok" {
		t.Errorf("System = %q, want %q", s.System, "ok")
	}
	if s.UptimeSeconds != 86400 {
		t.Errorf("UptimeSeconds = %d, want 86400", s.UptimeSeconds)
	}
	if s.RSSI != -61 {
		t.Errorf("RSSI = %d, want -61", s.RSSI)
	}
}

func TestDecodeStatus_Malformed(t *testing.T) {
	_, err := DecodeStatus([]byte(`not json at all`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("DecodeStatus() error = %v, want ErrMalformedPayload", err)
	}
}

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CommandValveOn, "GPIO_ON"},
		{CommandValveOff, "GPIO_OFF"},
		{CommandGetReading, "GET_READING"},
		{CommandGetStatus, "GET_STATUS"},
	}

	for _, tt := range tests {
		if got := string(EncodeCommand(tt.cmd)); got != tt.want {
			t.Errorf("EncodeCommand(%v) = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestSnapshot(t *testing.T) {
	r := Reading{
		Voltage:    1.5,
		Moisture:   55.0,
		ObservedAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		ValveOpen:  true,
	}

	snap := r.Snapshot()
	if snap.Timestamp != r.ObservedAt.Unix() {
		t.Errorf("Snapshot.Timestamp = %d, want %d", snap.Timestamp, r.ObservedAt.Unix())
	}
	if snap.Moisture != 55.0 || snap.Voltage != 1.5 || !snap.ValveOpen {
		t.Errorf("Snapshot = %+v, want fields copied from reading", snap)
	}
}

func TestSnapshot_ZeroTime(t *testing.T) {
	snap := Reading{Moisture: 10}.Snapshot()
	if snap.Timestamp != 0 {
		t.Errorf("Snapshot.Timestamp = %d for zero ObservedAt, want 0", snap.Timestamp)
	}
}
