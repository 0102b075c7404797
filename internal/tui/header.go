package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/grovertally/internal/format"
)

// HeaderModel renders the top bar: title, batch parameters, elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	batch     string
	width     int
	now       func() time.Time
}

// NewHeaderModel creates a new header. batch describes the run, for example
// "N=21 · 100 trials · exec".
func NewHeaderModel(version, batch string) HeaderModel {
	return HeaderModel{startTime: time.Now(), version: version, batch: batch, now: time.Now}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() {
	h.endTime = h.now()
}

// Reset restarts the elapsed timer.
func (h *HeaderModel) Reset() {
	h.startTime = h.now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the running or frozen batch duration.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return h.now().Sub(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "Grover Tally"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	row := titleStyle.Render(titleText) + pipe + dimStyle.Render(h.batch) + pipe +
		elapsedStyle.Render(fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(h.Elapsed())))

	if gap := h.width - 2 - lipgloss.Width(row); gap > 0 {
		row += strings.Repeat(" ", gap)
	}
	return headerStyle.Width(h.width).Render(row)
}
