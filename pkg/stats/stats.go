package stats

import (
	"sync"
	"time"
)

// Tracker aggregates counters for one run
type Tracker struct {
	mu      sync.Mutex
	total   int
	success int
	failed  int
	skipped int
	started time.Time
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	Total       int
	Success     int
	Failed      int
	Skipped     int
	Elapsed     time.Duration
	SuccessRate float64
}

// NewTracker starts a tracker with the clock running
func NewTracker() *Tracker {
	return &Tracker{started: time.Now()}
}

// AddSuccess records one item fully acquired
func (t *Tracker) AddSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.success++
}

// AddFailed records one item that could not be acquired
func (t *Tracker) AddFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.failed++
}

// AddSkipped records one item skipped by dedup or idempotence checks
func (t *Tracker) AddSkipped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.skipped++
}

// Snapshot returns a consistent copy of the counters
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Total:   t.total,
		Success: t.success,
		Failed:  t.failed,
		Skipped: t.skipped,
		Elapsed: time.Since(t.started),
	}
	attempted := t.success + t.failed
	if attempted > 0 {
		s.SuccessRate = float64(t.success) / float64(attempted) * 100
	}
	return s
}
