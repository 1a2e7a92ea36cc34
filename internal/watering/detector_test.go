package watering

import (
	"testing"
	"time"
)

var detectNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testDetector() Detector {
	return Detector{
		DeltaThreshold: 10.0,
		ReconcileGrace: 5 * time.Minute,
	}
}

func TestInspect_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name     string
		previous float64
		current  float64
		want     Outcome
	}{
		{"exactly at threshold", 25.0, 35.0, OutcomeDetected},
		{"just below threshold", 25.0, 34.99, OutcomeNone},
		{"well above threshold", 25.0, 45.0, OutcomeDetected},
		{"falling moisture", 45.0, 25.0, OutcomeNone},
		{"flat", 30.0, 30.0, OutcomeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &Log{}
			got := testDetector().Inspect(log, tt.previous, tt.current, detectNow)
			if got != tt.want {
				t.Errorf("Inspect(%v -> %v) = %v, want %v", tt.previous, tt.current, got, tt.want)
			}
		})
	}
}

func TestInspect_DetectedRecordFields(t *testing.T) {
	log := &Log{}

	// Reading stream (t=0, 25%) -> (t=1min, 45%) with no pending command.
	got := testDetector().Inspect(log, 25.0, 45.0, detectNow)
	if got != OutcomeDetected {
		t.Fatalf("Inspect() = %v, want OutcomeDetected", got)
	}

	recs := log.Recent(10)
	if len(recs) != 1 {
		t.Fatalf("log has %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Kind != KindDetected {
		t.Errorf("Kind = %v, want KindDetected", rec.Kind)
	}
	if rec.MoistureBefore != 25.0 {
		t.Errorf("MoistureBefore = %v, want 25.0", rec.MoistureBefore)
	}
	if rec.MoistureAfter == nil || *rec.MoistureAfter != 45.0 {
		t.Errorf("MoistureAfter = %v, want 45.0", rec.MoistureAfter)
	}
	if rec.Delta == nil || *rec.Delta != 20.0 {
		t.Errorf("Delta = %v, want 20.0", rec.Delta)
	}
}

func TestInspect_ReconcilesPendingRecord(t *testing.T) {
	log := &Log{}
	log.Append(Record{
		At:             detectNow.Add(-2 * time.Minute),
		Kind:           KindManual,
		MoistureBefore: 25.0,
	})

	got := testDetector().Inspect(log, 25.0, 40.0, detectNow)
	if got != OutcomeReconciled {
		t.Fatalf("Inspect() = %v, want OutcomeReconciled", got)
	}

	// Log length unchanged; the pending record was filled in.
	if log.Len() != 1 {
		t.Fatalf("log has %d records, want 1", log.Len())
	}
	rec := log.Recent(1)[0]
	if rec.Kind != KindManual {
		t.Errorf("Kind = %v, want KindManual", rec.Kind)
	}
	if rec.MoistureAfter == nil || *rec.MoistureAfter != 40.0 {
		t.Errorf("MoistureAfter = %v, want 40.0", rec.MoistureAfter)
	}
	if rec.Delta == nil || *rec.Delta != 15.0 {
		t.Errorf("Delta = %v, want 15.0", rec.Delta)
	}
	if rec.Pending() {
		t.Error("record still pending after reconciliation")
	}
}

func TestInspect_GraceWindowExpired(t *testing.T) {
	log := &Log{}
	log.Append(Record{
		At:             detectNow.Add(-6 * time.Minute), // outside 5-minute grace
		Kind:           KindManual,
		MoistureBefore: 25.0,
	})

	got := testDetector().Inspect(log, 25.0, 40.0, detectNow)
	if got != OutcomeDetected {
		t.Fatalf("Inspect() = %v, want OutcomeDetected (grace expired)", got)
	}

	// The stale pending record stays pending; a new Detected record lands.
	if log.Len() != 2 {
		t.Fatalf("log has %d records, want 2", log.Len())
	}
	recs := log.Recent(2)
	if recs[0].Kind != KindDetected {
		t.Errorf("newest record Kind = %v, want KindDetected", recs[0].Kind)
	}
	if !recs[1].Pending() {
		t.Error("stale manual record should remain pending")
	}
}

func TestInspect_ReconciledRecordNotReusedTwice(t *testing.T) {
	log := &Log{}
	log.Append(Record{
		At:             detectNow.Add(-time.Minute),
		Kind:           KindAutomatic,
		MoistureBefore: 20.0,
	})

	if got := testDetector().Inspect(log, 20.0, 35.0, detectNow); got != OutcomeReconciled {
		t.Fatalf("first Inspect() = %v, want OutcomeReconciled", got)
	}
	// A second qualifying rise finds no pending record.
	if got := testDetector().Inspect(log, 35.0, 50.0, detectNow.Add(time.Minute)); got != OutcomeDetected {
		t.Errorf("second Inspect() = %v, want OutcomeDetected", got)
	}
	if log.Len() != 2 {
		t.Errorf("log has %d records, want 2", log.Len())
	}
}

func TestRecent_NewestFirstAndTruncated(t *testing.T) {
	log := &Log{}
	for i := 0; i < 60; i++ {
		log.Append(Record{
			At:             detectNow.Add(time.Duration(i) * time.Minute),
			Kind:           KindDetected,
			MoistureBefore: float64(i),
		})
	}

	recs := log.Recent(50)
	if len(recs) != 50 {
		t.Fatalf("Recent(50) returned %d records, want 50", len(recs))
	}
	if recs[0].MoistureBefore != 59 {
		t.Errorf("Recent(50)[0].MoistureBefore = %v, want 59 (newest first)", recs[0].MoistureBefore)
	}
	if recs[49].MoistureBefore != 10 {
		t.Errorf("Recent(50)[49].MoistureBefore = %v, want 10", recs[49].MoistureBefore)
	}
}
