package history

import (
	"time"

	"github.com/nerrad567/soilsense-core/internal/telemetry"
)

// maxQueryAge caps range queries regardless of what the caller asks for.
const maxQueryAge = 24 * time.Hour

// Buffer is an append-only, capacity- and age-bounded sequence of readings.
//
// Readings are kept in arrival order, which is network order and not
// necessarily monotonic in observation time. Two bounds apply:
//
//   - Age: Compact removes readings older than the retention period.
//   - Capacity: Append evicts the oldest reading once the hard cap is
//     reached, regardless of age.
//
// Buffer is not safe for concurrent use. The engine owns it and guards
// all access with its state lock.
type Buffer struct {
	retention time.Duration
	capacity  int
	samples   []telemetry.Reading
}

// New creates a buffer with the given retention period and hard capacity cap.
func New(retention time.Duration, capacity int) *Buffer {
	return &Buffer{
		retention: retention,
		capacity:  capacity,
		samples:   make([]telemetry.Reading, 0, capacity),
	}
}

// Append adds a reading in arrival order, evicting the oldest reading
// if the buffer is at capacity.
func (b *Buffer) Append(r telemetry.Reading) {
	if len(b.samples) >= b.capacity {
		// Shift in place; the buffer never grows past capacity so this
		// stays a single small copy.
		copy(b.samples, b.samples[1:])
		b.samples = b.samples[:len(b.samples)-1]
	}
	b.samples = append(b.samples, r)
}

// Query returns all readings observed within maxAge of now, in arrival
// order. A non-positive maxAge means the configured retention period;
// requests beyond 24 hours are clamped to 24 hours.
//
// Readings with a zero observation time are excluded: their age is
// unknowable, so they are never reported as recent.
func (b *Buffer) Query(now time.Time, maxAge time.Duration) []telemetry.Reading {
	if maxAge <= 0 {
		maxAge = b.retention
	}
	if maxAge > maxQueryAge {
		maxAge = maxQueryAge
	}
	cutoff := now.Add(-maxAge)

	out := make([]telemetry.Reading, 0, len(b.samples))
	for _, r := range b.samples {
		if r.ObservedAt.IsZero() {
			continue
		}
		if !r.ObservedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Compact removes all readings older than the retention period and
// returns how many were removed. Readings with a zero observation time
// are retained: an unknown age is treated as not-yet-expirable, so the
// capacity cap alone bounds them. Compacting an already-compact buffer
// is a no-op.
func (b *Buffer) Compact(now time.Time) int {
	cutoff := now.Add(-b.retention)

	kept := b.samples[:0]
	for _, r := range b.samples {
		if r.ObservedAt.IsZero() || !r.ObservedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	removed := len(b.samples) - len(kept)
	b.samples = kept
	return removed
}

// Len returns the number of buffered readings.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Retention returns the configured retention period.
func (b *Buffer) Retention() time.Duration {
	return b.retention
}
