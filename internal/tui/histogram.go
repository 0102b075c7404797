package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agbru/grovertally/internal/chart"
	"github.com/agbru/grovertally/internal/format"
	"github.com/agbru/grovertally/internal/orchestration"
	"github.com/agbru/grovertally/internal/tally"
)

// sparklineSamples is the number of CPU and memory readings kept.
const sparklineSamples = 40

// HistogramModel is the chart panel. While a batch runs it shows a live
// preview tallied from completed trials; the final chart replaces it. A
// failed batch shows no bars.
type HistogramModel struct {
	live     *tally.Table
	final    *chart.Spec
	failed   bool
	n        uint64
	trials   int
	snapshot orchestration.ProgressSnapshot
	cpu      *RingBuffer
	mem      *RingBuffer
	width    int
	height   int
}

// NewHistogramModel creates the chart panel for a batch.
func NewHistogramModel(n uint64, trials int) HistogramModel {
	return HistogramModel{
		live:   tally.New(),
		n:      n,
		trials: trials,
		cpu:    NewRingBuffer(sparklineSamples),
		mem:    NewRingBuffer(sparklineSamples),
	}
}

// SetSize updates dimensions.
func (h *HistogramModel) SetSize(w, hgt int) {
	h.width = w
	h.height = hgt
	if inner := w - 16; inner > 0 {
		h.cpu.Resize(inner)
		h.mem.Resize(inner)
	}
}

// AddTrial feeds the live preview.
func (h *HistogramModel) AddTrial(u orchestration.ProgressUpdate, snap orchestration.ProgressSnapshot) {
	h.snapshot = snap
	if u.Phase == orchestration.TrialCompleted && !h.failed && h.final == nil {
		h.live.Add(u.Output)
	}
}

// SetFinal installs the chart of the completed batch.
func (h *HistogramModel) SetFinal(spec chart.Spec) {
	h.final = &spec
}

// SetFailed discards every tallied output.
func (h *HistogramModel) SetFailed() {
	h.failed = true
	h.final = nil
	h.live = tally.New()
}

// UpdateSysStats appends a CPU and memory reading.
func (h *HistogramModel) UpdateSysStats(cpuPct, memPct float64) {
	h.cpu.Push(cpuPct)
	h.mem.Push(memPct)
}

// Reset prepares the panel for a new batch.
func (h *HistogramModel) Reset() {
	h.live = tally.New()
	h.final = nil
	h.failed = false
	h.snapshot = orchestration.ProgressSnapshot{}
	h.cpu.Reset()
	h.mem.Reset()
}

// Bars returns what the panel currently plots.
func (h HistogramModel) Bars() []chart.Bar {
	switch {
	case h.failed:
		return nil
	case h.final != nil:
		return h.final.Bars
	default:
		return chart.NewSpec(h.live.Entries(), h.n, h.trials).Bars
	}
}

// Title returns the panel title.
func (h HistogramModel) Title() string {
	if h.final != nil {
		return h.final.Title
	}
	return chart.Title(h.n, h.trials) + " (live)"
}

// View renders the panel.
func (h HistogramModel) View() string {
	inner := max(h.width-4, 10)
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render(h.Title()))
	sb.WriteString("\n")

	bar := progressBarString(h.snapshot.Fraction, max(inner-30, 10))
	fmt.Fprintf(&sb, "%s %s  %s %s\n",
		bar, metricValueStyle.Render(format.FormatPercent(h.snapshot.Fraction)),
		metricLabelStyle.Render("ETA"), metricValueStyle.Render(format.FormatExecutionDuration(h.snapshot.ETA)))

	bars := h.Bars()
	// Room left after title, progress, the two sparklines and the borders.
	rows := max(h.height-6, 1)
	if len(bars) == 0 {
		msg := "waiting for outputs"
		if h.failed {
			msg = "batch failed, no data"
		}
		sb.WriteString(dimStyle.Render(msg) + "\n")
	} else {
		labelWidth := 1
		for _, b := range bars {
			labelWidth = max(labelWidth, len(b.Label))
		}
		maxCount := 0
		for _, b := range bars {
			maxCount = max(maxCount, b.Count)
		}
		style := liveBarStyle
		if h.final != nil {
			style = barStyle
		}
		barWidth := max(inner-labelWidth-10, 5)
		for i, b := range bars {
			if i == rows {
				sb.WriteString(dimStyle.Render(fmt.Sprintf("+%d more", len(bars)-rows)) + "\n")
				break
			}
			fmt.Fprintf(&sb, "%*s │ %s %s\n", labelWidth, b.Label,
				style.Render(chart.BarString(b.Count, maxCount, barWidth)), strconv.Itoa(b.Count))
		}
	}

	fmt.Fprintf(&sb, "%s %s\n", metricLabelStyle.Render("CPU "), cpuSparklineStyle.Render(RenderSparkline(h.cpu.Slice())))
	fmt.Fprintf(&sb, "%s %s", metricLabelStyle.Render("MEM "), memSparklineStyle.Render(RenderSparkline(h.mem.Slice())))

	return panelStyle.Width(max(h.width-2, 0)).Height(max(h.height-2, 0)).Render(sb.String())
}

// progressBarString renders a fraction in [0, 1] as a bar of the given width.
func progressBarString(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction * float64(width))
	return barStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}
