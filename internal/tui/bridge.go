package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/grovertally/internal/chart"
	apperrors "github.com/agbru/grovertally/internal/errors"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/tally"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe). It is a
// no-op until a program is set.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// sender is the part of programRef the bridge needs. Tests substitute a
// recorder.
type sender interface {
	Send(msg tea.Msg)
}

// TUIProgressReporter implements orchestration.ProgressReporter.
// It drains the progress channel and forwards updates as bubbletea messages.
type TUIProgressReporter struct {
	ref        sender
	generation uint64
}

// Verify interface compliance.
var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress forwards every update as a TrialMsg and ends with a
// ProgressDoneMsg.
func (t *TUIProgressReporter) DisplayProgress(progressChan <-chan orchestration.ProgressUpdate, total int, _ io.Writer) {
	tracker := orchestration.NewProgressTracker(total)
	for u := range progressChan {
		t.ref.Send(TrialMsg{Update: u, Snapshot: tracker.Update(u), Generation: t.generation})
	}
	t.ref.Send(ProgressDoneMsg{Generation: t.generation})
}

// TUIResultPresenter implements the presentation side of a batch for the
// dashboard: the table, the summary, the chart and errors are sent as
// messages instead of being written out.
type TUIResultPresenter struct {
	ref        sender
	generation uint64
}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = (*TUIResultPresenter)(nil)
	_ orchestration.ErrorHandler    = (*TUIResultPresenter)(nil)
	_ chart.Renderer                = (*TUIResultPresenter)(nil)
)

// PresentTable sends the final table.
func (t *TUIResultPresenter) PresentTable(entries []tally.Entry, _ io.Writer) {
	t.ref.Send(TableMsg{Entries: entries, Generation: t.generation})
}

// PresentSummary sends the summary.
func (t *TUIResultPresenter) PresentSummary(s tally.Summary, _ orchestration.PresentationOptions, _ io.Writer) {
	t.ref.Send(SummaryMsg{Summary: s, Generation: t.generation})
}

// Render sends the final chart to the histogram panel.
func (t *TUIResultPresenter) Render(spec chart.Spec) error {
	t.ref.Send(ChartMsg{Spec: spec, Generation: t.generation})
	return nil
}

// HandleError sends an error message to the TUI and returns the exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	t.ref.Send(ErrorMsg{Err: err, Duration: duration, Generation: t.generation})
	return apperrors.ExitCodeFor(err)
}
