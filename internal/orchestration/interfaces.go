package orchestration

import (
	"io"
	"time"

	"github.com/agbru/grovertally/internal/tally"
)

// TrialPhase tells a ProgressUpdate apart as the start or the end of a trial.
type TrialPhase int

const (
	// TrialStarted is sent before the sampler is invoked.
	TrialStarted TrialPhase = iota
	// TrialCompleted is sent after the sampler returned an output.
	TrialCompleted
	// TrialFailed is sent when the sampler returned an error.
	TrialFailed
)

// ProgressUpdate describes one step of the trial loop.
type ProgressUpdate struct {
	// Index is the zero-based trial number.
	Index int
	// Total is the number of trials in the batch.
	Total int
	Phase TrialPhase
	// Output is set for TrialCompleted.
	Output int64
	// Duration is set for TrialCompleted and TrialFailed.
	Duration time.Duration
	// Err is set for TrialFailed.
	Err error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	N       uint64
	Trials  int
	Verbose bool
}

// ProgressReporter defines the interface for displaying batch progress.
// This interface decouples the orchestration layer from the presentation
// layer: implementations handle the visual representation (progress lines,
// spinners, the dashboard) while the orchestration layer drives the trials.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed. It runs
	// on its own goroutine.
	DisplayProgress(progressChan <-chan ProgressUpdate, total int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(progressChan <-chan ProgressUpdate, total int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(progressChan <-chan ProgressUpdate, total int, out io.Writer) {
	f(progressChan, total, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting a finished batch.
type ResultPresenter interface {
	// PresentTable writes the frequency table.
	PresentTable(entries []tally.Entry, out io.Writer)
	// PresentSummary writes the distribution summary shown in verbose mode.
	PresentSummary(summary tally.Summary, opts PresentationOptions, out io.Writer)
}

// ErrorHandler handles batch errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// TrialObserver is notified after every trial, successful or not. The
// metrics collector implements it.
type TrialObserver interface {
	ObserveTrial(index int, output int64, duration time.Duration, err error)
}

// TrialObserverFunc adapts a function to TrialObserver.
type TrialObserverFunc func(index int, output int64, duration time.Duration, err error)

// ObserveTrial calls f.
func (f TrialObserverFunc) ObserveTrial(index int, output int64, duration time.Duration, err error) {
	f(index, output, duration, err)
}
