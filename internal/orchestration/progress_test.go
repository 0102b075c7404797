package orchestration

import (
	"testing"
	"time"
)

func TestProgressTracker(t *testing.T) {
	t.Parallel()
	clock := time.Unix(0, 0)
	p := NewProgressTracker(4)
	p.now = func() time.Time { return clock }

	p.Update(ProgressUpdate{Index: 0, Phase: TrialStarted})
	clock = clock.Add(2 * time.Second)
	s := p.Update(ProgressUpdate{Index: 0, Phase: TrialCompleted, Duration: 2 * time.Second})

	if s.Completed != 1 || s.Total != 4 {
		t.Fatalf("got %d of %d, want 1 of 4", s.Completed, s.Total)
	}
	if s.Fraction != 0.25 {
		t.Errorf("Fraction = %v, want 0.25", s.Fraction)
	}
	if s.MeanTrial != 2*time.Second {
		t.Errorf("MeanTrial = %v, want 2s", s.MeanTrial)
	}
	if s.ETA != 6*time.Second {
		t.Errorf("ETA = %v, want 6s", s.ETA)
	}
	if s.Elapsed != 2*time.Second {
		t.Errorf("Elapsed = %v, want 2s", s.Elapsed)
	}
}

func TestProgressTracker_FailedTrialNotCounted(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker(2)
	s := p.Update(ProgressUpdate{Phase: TrialFailed, Duration: time.Second})
	if s.Completed != 0 {
		t.Errorf("Completed = %d, want 0", s.Completed)
	}
}

func TestProgressTracker_EmptyBatch(t *testing.T) {
	t.Parallel()
	s := NewProgressTracker(0).Snapshot()
	if s.Fraction != 1 {
		t.Errorf("Fraction = %v, want 1 for an empty batch", s.Fraction)
	}
}

func TestProgressTracker_Reset(t *testing.T) {
	t.Parallel()
	p := NewProgressTracker(2)
	p.Update(ProgressUpdate{Phase: TrialCompleted, Duration: time.Second})
	p.Reset(5)
	s := p.Snapshot()
	if s.Completed != 0 || s.Total != 5 || s.Elapsed != 0 {
		t.Errorf("unexpected snapshot after reset: %+v", s)
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 3)
	ch <- ProgressUpdate{}
	ch <- ProgressUpdate{}
	close(ch)
	DrainChannel(ch)
	if len(ch) != 0 {
		t.Errorf("channel not drained")
	}
}
