// Package history keeps a bounded record of recent layout runs and derives
// performance statistics from it.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of records kept before the oldest is evicted.
const DefaultCapacity = 100

// AcceptableQuality is the score a run must exceed to count toward the
// success rate.
const AcceptableQuality = 0.5

// Record describes one completed layout run.
type Record struct {
	RunID         string        `json:"run_id"`
	Engine        string        `json:"engine"`
	ExecutionTime time.Duration `json:"execution_time"`
	QualityScore  float64       `json:"quality_score"`
	NodeCount     int           `json:"node_count"`
	EdgeCount     int           `json:"edge_count"`
	Success       bool          `json:"success"`
	Timestamp     time.Time     `json:"timestamp"`
}

// NewRunID returns a fresh identifier for a layout run.
func NewRunID() string { return uuid.NewString() }

// Ring is a fixed-capacity, append-only buffer of records. It is safe for
// one writer and any number of concurrent readers.
type Ring struct {
	mu    sync.RWMutex
	buf   []Record
	start int // index of the oldest record
	n     int
}

// NewRing returns a ring holding at most capacity records. A non-positive
// capacity selects DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]Record, capacity)}
}

// Append adds r, evicting the oldest record when the ring is full.
func (r *Ring) Append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = rec
		r.n++
		return
	}
	r.buf[r.start] = rec
	r.start = (r.start + 1) % len(r.buf)
}

// Snapshot returns the records oldest first.
func (r *Ring) Snapshot() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of stored records.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.n
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Reset discards all records.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.buf)
	r.start, r.n = 0, 0
}

// Stats computes statistics over the current records.
func (r *Ring) Stats() Stats {
	return Compute(r.Snapshot())
}
