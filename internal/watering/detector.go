package watering

import "time"

// Outcome describes what a detector pass did.
type Outcome int

const (
	// OutcomeNone means the moisture delta did not qualify.
	OutcomeNone Outcome = iota

	// OutcomeReconciled means a pending manual/automatic record absorbed
	// the rise; no new record was created.
	OutcomeReconciled

	// OutcomeDetected means a new Detected record was appended.
	OutcomeDetected
)

// Detector classifies the moisture delta between two consecutive
// readings as a watering event. Stateless per call; callers pass the
// log it may mutate, and are responsible for serializing access.
type Detector struct {
	// DeltaThreshold is the minimum qualifying moisture rise. A delta
	// exactly at the threshold qualifies.
	DeltaThreshold float64

	// ReconcileGrace is how close (in wall-clock time) a pending record
	// must be to absorb the rise instead of a new Detected record.
	ReconcileGrace time.Duration
}

// Inspect evaluates the rise from previous to current moisture at time now.
//
// A qualifying rise first tries to reconcile the most recent pending
// manual/automatic record within the grace window; failing that, it
// appends a new Detected record. Reconciliation is keyed on wall-clock
// proximity, not message ordering.
func (d Detector) Inspect(log *Log, previous, current float64, now time.Time) Outcome {
	delta := current - previous
	if delta < d.DeltaThreshold {
		return OutcomeNone
	}

	if log.reconcile(now, d.ReconcileGrace, current, delta) {
		return OutcomeReconciled
	}

	after := current
	log.Append(Record{
		At:             now,
		Kind:           KindDetected,
		MoistureBefore: previous,
		MoistureAfter:  &after,
		Delta:          &delta,
	})
	return OutcomeDetected
}
