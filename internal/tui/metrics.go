package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/grovertally/internal/format"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/tally"
)

// MetricsModel displays batch throughput and runtime memory figures.
type MetricsModel struct {
	snapshot     orchestration.ProgressSnapshot
	summary      *tally.Summary
	distinct     int
	heapAlloc    uint64
	sys          uint64
	numGC        uint32
	numGoroutine int
	procRSS      uint64
	width        int
	height       int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateProgress records the latest batch snapshot and the number of
// distinct outputs seen so far.
func (m *MetricsModel) UpdateProgress(snap orchestration.ProgressSnapshot, distinct int) {
	m.snapshot = snap
	m.distinct = distinct
}

// UpdateSummary stores the summary of a completed batch.
func (m *MetricsModel) UpdateSummary(s tally.Summary) {
	m.summary = &s
	m.distinct = s.Distinct
}

// UpdateMemStats updates runtime memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.heapAlloc = msg.HeapAlloc
	m.sys = msg.Sys
	m.numGC = msg.NumGC
	m.numGoroutine = msg.NumGoroutine
}

// UpdateSysStats records the process resident set size.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) {
	m.procRSS = msg.ProcRSS
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	colWidth := max((m.width-6)/2, 0)

	mode := "-"
	if m.summary != nil && m.summary.Total > 0 {
		mode = fmt.Sprintf("%d (%s)", m.summary.Mode, format.FormatPercent(m.summary.ModeShare))
	}

	left := []string{
		formatMetricCol("Trials:", fmt.Sprintf("%d / %d", m.snapshot.Completed, m.snapshot.Total), colWidth),
		formatMetricCol("Rate:", format.FormatRate(m.snapshot.Completed, m.snapshot.Elapsed), colWidth),
		formatMetricCol("Mean trial:", format.FormatExecutionDuration(m.snapshot.MeanTrial), colWidth),
	}
	right := []string{
		formatMetricCol("Distinct:", fmt.Sprintf("%d", m.distinct), colWidth),
		formatMetricCol("Mode:", mode, colWidth),
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth),
	}

	var rows strings.Builder
	pipe := metricLabelStyle.Render(" | ")
	fmt.Fprintf(&rows, "  %s %s%s%s %s%s%s %s",
		metricLabelStyle.Render("Heap:"), metricValueStyle.Render(formatBytes(m.heapAlloc)+" / "+formatBytes(m.sys)),
		pipe,
		metricLabelStyle.Render("GC:"), metricValueStyle.Render(fmt.Sprintf("%d", m.numGC)),
		pipe,
		metricLabelStyle.Render("RSS:"), metricValueStyle.Render(formatBytes(m.procRSS)))
	for i := range left {
		rows.WriteString("\n")
		rows.WriteString(left[i])
		rows.WriteString(right[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
