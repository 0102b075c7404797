package orchestration

import "time"

// ProgressTracker turns a stream of ProgressUpdate values into completion,
// rate and ETA figures. Both the console spinner and the dashboard use it so
// the arithmetic lives in one place. It is not safe for concurrent use.
type ProgressTracker struct {
	total     int
	completed int
	start     time.Time
	busy      time.Duration
	now       func() time.Time
}

// NewProgressTracker creates a tracker for a batch of total trials.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{total: total, now: time.Now}
}

// ProgressSnapshot is the state of a batch after an update.
type ProgressSnapshot struct {
	Completed int
	Total     int
	// Fraction is Completed/Total in [0, 1]. An empty batch reports 1.
	Fraction float64
	// MeanTrial is the average wall time of completed trials.
	MeanTrial time.Duration
	// ETA extrapolates MeanTrial over the remaining trials.
	ETA time.Duration
	Elapsed time.Duration
}

// Update applies one update and returns the new snapshot.
func (p *ProgressTracker) Update(u ProgressUpdate) ProgressSnapshot {
	if p.start.IsZero() {
		p.start = p.now()
	}
	if u.Phase == TrialCompleted {
		p.completed++
		p.busy += u.Duration
	}
	return p.Snapshot()
}

// Snapshot returns the current state without applying an update.
func (p *ProgressTracker) Snapshot() ProgressSnapshot {
	s := ProgressSnapshot{Completed: p.completed, Total: p.total, Fraction: 1}
	if p.total > 0 {
		s.Fraction = float64(p.completed) / float64(p.total)
	}
	if !p.start.IsZero() {
		s.Elapsed = p.now().Sub(p.start)
	}
	if p.completed > 0 {
		s.MeanTrial = p.busy / time.Duration(p.completed)
		s.ETA = s.MeanTrial * time.Duration(max(p.total-p.completed, 0))
	}
	return s
}

// Reset clears the tracker for a new batch of total trials.
func (p *ProgressTracker) Reset(total int) {
	p.total = total
	p.completed = 0
	p.busy = 0
	p.start = time.Time{}
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
