package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/grovertally/internal/cli"
	"github.com/agbru/grovertally/internal/config"
	"github.com/agbru/grovertally/internal/format"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/tally"
)

// maxLogLines bounds the log history kept in memory.
const maxLogLines = 5000

// LogsModel is the scrolling trial log on the left of the dashboard.
type LogsModel struct {
	lines    []string
	viewport viewport.Model
	follow   bool
	now      func() time.Time
}

// NewLogsModel creates an empty log panel that follows new entries.
func NewLogsModel() LogsModel {
	return LogsModel{viewport: viewport.New(0, 0), follow: true, now: time.Now}
}

// SetSize updates the panel dimensions, borders included.
func (l *LogsModel) SetSize(w, h int) {
	l.viewport.Width = max(w-2, 0)
	l.viewport.Height = max(h-3, 0)
	l.refresh()
}

func (l *LogsModel) timestamp() string {
	return logTimeStyle.Render(l.now().Format("15:04:05"))
}

func (l *LogsModel) add(line string) {
	l.lines = append(l.lines, line)
	if len(l.lines) > maxLogLines {
		l.lines = l.lines[len(l.lines)-maxLogLines:]
	}
	l.refresh()
}

func (l *LogsModel) refresh() {
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	if l.follow {
		l.viewport.GotoBottom()
	}
}

// AddExecutionConfig logs the parameters of the batch.
func (l *LogsModel) AddExecutionConfig(cfg config.AppConfig, samplerName string) {
	timeout := "none"
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout.String()
	}
	l.add(fmt.Sprintf("%s Running %d trials of %s for N=%d (timeout %s)",
		l.timestamp(), cfg.Trials, logTrialStyle.Render(samplerName), cfg.N, timeout))
}

// AddTrial logs a progress update. Start events use the console wording
// "Experiment: i of R"; completions add the output and duration.
func (l *LogsModel) AddTrial(u orchestration.ProgressUpdate) {
	switch u.Phase {
	case orchestration.TrialStarted:
		l.add(fmt.Sprintf("%s %s", l.timestamp(), logTrialStyle.Render(fmt.Sprintf("Experiment: %d of %d", u.Index, u.Total))))
	case orchestration.TrialCompleted:
		l.add(fmt.Sprintf("%s   → %s %s", l.timestamp(),
			logOutputStyle.Render(fmt.Sprintf("%d", u.Output)),
			dimStyle.Render("("+format.FormatExecutionDuration(u.Duration)+")")))
	case orchestration.TrialFailed:
		l.add(fmt.Sprintf("%s   %s", l.timestamp(), logErrorStyle.Render(fmt.Sprintf("✗ trial %d: %v", u.Index, u.Err))))
	}
}

// AddTable logs the final frequency table.
func (l *LogsModel) AddTable(entries []tally.Entry) {
	l.add(logSuccessStyle.Render(fmt.Sprintf("%s Batch complete: %d distinct outputs", l.timestamp(), len(entries))))
	for _, line := range strings.Split(strings.TrimSuffix(cli.FormatTable(entries), "\n"), "\n") {
		l.add("  " + line)
	}
}

// AddSummary logs the distribution summary.
func (l *LogsModel) AddSummary(s tally.Summary) {
	if s.Total == 0 {
		return
	}
	l.add(fmt.Sprintf("  mode %d (%s), entropy %.3f bits, %d factor hits",
		s.Mode, format.FormatPercent(s.ModeShare), s.EntropyBits, s.FactorHits))
}

// AddError logs a batch failure.
func (l *LogsModel) AddError(msg ErrorMsg) {
	l.add(logErrorStyle.Render(fmt.Sprintf("%s Batch aborted after %s: %v",
		l.timestamp(), format.FormatExecutionDuration(msg.Duration), msg.Err)))
}

// Reset clears the log.
func (l *LogsModel) Reset() {
	l.lines = nil
	l.follow = true
	l.refresh()
}

// Lines returns the number of log lines held.
func (l LogsModel) Lines() int { return len(l.lines) }

// Update scrolls the log. Scrolling up stops following new entries until the
// bottom is reached again.
func (l *LogsModel) Update(msg tea.Msg) {
	l.viewport, _ = l.viewport.Update(msg)
	l.follow = l.viewport.AtBottom()
}

// View renders the panel.
func (l LogsModel) View() string {
	body := panelTitleStyle.Render("Trials") + "\n" + l.viewport.View()
	return panelStyle.Width(l.viewport.Width).Render(body)
}
