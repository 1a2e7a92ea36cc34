package watering

import "time"

// Kind classifies how a watering event came about.
type Kind string

const (
	// KindManual is an explicit externally-issued watering command.
	KindManual Kind = "manual"

	// KindAutomatic is a cycle triggered by the auto-watering controller.
	KindAutomatic Kind = "automatic"

	// KindDetected is a watering inferred purely from a moisture jump,
	// with no corresponding command from this system.
	KindDetected Kind = "detected"
)

// Record is one entry in the watering log.
//
// Manual and Automatic records are created at command time with
// MoistureAfter unset ("pending reconciliation"); the detector fills
// them in when the next qualifying moisture rise arrives within the
// grace window. Detected records are created fully populated.
type Record struct {
	At             time.Time `json:"at"`
	Kind           Kind      `json:"kind"`
	MoistureBefore float64   `json:"moisture_before"`
	MoistureAfter  *float64  `json:"moisture_after,omitempty"`
	Delta          *float64  `json:"delta,omitempty"`
}

// Pending reports whether the record awaits reconciliation: a Manual or
// Automatic record whose after-watering moisture has not arrived yet.
func (r Record) Pending() bool {
	return r.MoistureAfter == nil && (r.Kind == KindManual || r.Kind == KindAutomatic)
}

// Log is the append-only watering event log.
//
// Like the retention buffer, it is not safe for concurrent use; the
// engine guards all access with its state lock.
type Log struct {
	records []Record
}

// Append adds a record to the log.
func (l *Log) Append(r Record) {
	l.records = append(l.records, r)
}

// Recent returns up to n records, newest first.
func (l *Log) Recent(n int) []Record {
	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]Record, 0, n)
	for i := len(l.records) - 1; i >= len(l.records)-n; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Len returns the total number of records.
func (l *Log) Len() int {
	return len(l.records)
}

// reconcile searches newest-first for a pending record whose timestamp
// is within grace of now, and fills in its after-watering fields.
// Returns true if a record was reconciled.
func (l *Log) reconcile(now time.Time, grace time.Duration, moistureAfter, delta float64) bool {
	for i := len(l.records) - 1; i >= 0; i-- {
		rec := &l.records[i]
		if !rec.Pending() {
			continue
		}
		age := now.Sub(rec.At)
		if age < 0 {
			age = -age
		}
		if age > grace {
			continue
		}
		after := moistureAfter
		d := delta
		rec.MoistureAfter = &after
		rec.Delta = &d
		return true
	}
	return false
}
