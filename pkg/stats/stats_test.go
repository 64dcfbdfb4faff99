package stats

import "testing"

func TestTrackerCounts(t *testing.T) {
	tr := NewTracker()

	tr.AddSuccess()
	tr.AddSuccess()
	tr.AddFailed()
	tr.AddSkipped()

	s := tr.Snapshot()
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	if s.Success != 2 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("counters = %+v", s)
	}
}

func TestSuccessRateIgnoresSkipped(t *testing.T) {
	tr := NewTracker()

	tr.AddSuccess()
	tr.AddFailed()
	tr.AddSkipped()
	tr.AddSkipped()

	s := tr.Snapshot()
	if s.SuccessRate != 50 {
		t.Errorf("SuccessRate = %v, want 50 (skipped items excluded)", s.SuccessRate)
	}
}

func TestSuccessRateNoAttempts(t *testing.T) {
	tr := NewTracker()
	tr.AddSkipped()

	if rate := tr.Snapshot().SuccessRate; rate != 0 {
		t.Errorf("SuccessRate = %v, want 0 when nothing was attempted", rate)
	}
}

func TestElapsedMonotonic(t *testing.T) {
	tr := NewTracker()
	a := tr.Snapshot().Elapsed
	b := tr.Snapshot().Elapsed
	if b < a {
		t.Errorf("elapsed went backwards: %v then %v", a, b)
	}
}
