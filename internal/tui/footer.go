package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders key hints and the batch status.
type FooterModel struct {
	keymap KeyMap
	width  int
	paused bool
	done   bool
	failed bool
}

// NewFooterModel creates a footer for the given bindings.
func NewFooterModel(keymap KeyMap) FooterModel {
	return FooterModel{keymap: keymap}
}

func (f *FooterModel) SetWidth(w int) { f.width = w }

func (f *FooterModel) SetPaused(p bool) { f.paused = p }

func (f *FooterModel) SetDone(d bool) { f.done = d }

func (f *FooterModel) SetError(failed bool) { f.failed = failed }

// Status returns the status word shown on the right.
func (f FooterModel) Status() string {
	switch {
	case f.failed:
		return "Error"
	case f.done:
		return "Done"
	case f.paused:
		return "Paused"
	default:
		return "Running"
	}
}

// View renders the footer.
func (f FooterModel) View() string {
	var hints []string
	for _, b := range f.keymap.ShortHelp() {
		h := b.Help()
		hints = append(hints, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	left := " " + strings.Join(hints, "  ")

	var status string
	switch f.Status() {
	case "Error":
		status = statusErrorStyle.Render("Error")
	case "Done":
		status = statusDoneStyle.Render("Done")
	case "Paused":
		status = statusPausedStyle.Render("Paused")
	default:
		status = statusRunningStyle.Render("Running")
	}

	gap := f.width - lipgloss.Width(left) - lipgloss.Width(status) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + status
}
