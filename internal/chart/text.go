package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/grovertally/internal/ui"
)

// DefaultTextWidth is the widest bar drawn by TextRenderer.
const DefaultTextWidth = 50

// TextRenderer draws a horizontal bar chart to a writer. Colors follow the
// active ui theme and are dropped automatically when the writer is not a
// terminal.
type TextRenderer struct {
	Out   io.Writer
	Width int
}

// NewTextRenderer returns a TextRenderer with the default bar width.
func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{Out: out, Width: DefaultTextWidth}
}

// Render writes the chart.
func (t *TextRenderer) Render(spec Spec) error {
	_, err := io.WriteString(t.Out, t.Format(spec))
	return err
}

// Format returns the chart as a string.
func (t *TextRenderer) Format(spec Spec) string {
	width := t.Width
	if width <= 0 {
		width = DefaultTextWidth
	}

	theme := ui.GetCurrentTUITheme()
	r := lipgloss.NewRenderer(t.Out)
	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Accent)
	axisStyle := r.NewStyle().Foreground(theme.Dim)
	barStyle := r.NewStyle().Foreground(theme.Accent)

	labelWidth := len(spec.XLabel)
	for _, b := range spec.Bars {
		if len(b.Label) > labelWidth {
			labelWidth = len(b.Label)
		}
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render(spec.Title))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s %s %s\n",
		axisStyle.Render(fmt.Sprintf("%*s", labelWidth, spec.XLabel)), axisStyle.Render("│"), axisStyle.Render(spec.YLabel))

	if len(spec.Bars) == 0 {
		fmt.Fprintf(&sb, "%*s %s %s\n", labelWidth, "", axisStyle.Render("│"), axisStyle.Render("(no outputs)"))
		return sb.String()
	}

	maxCount := spec.MaxCount()
	for _, b := range spec.Bars {
		fmt.Fprintf(&sb, "%*s %s %s %d\n",
			labelWidth, b.Label, axisStyle.Render("│"), barStyle.Render(BarString(b.Count, maxCount, width)), b.Count)
	}
	return sb.String()
}

// BarString returns a bar of full blocks scaled so that maxCount fills width.
// Non-zero counts always get at least one block.
func BarString(count, maxCount, width int) string {
	if count <= 0 || maxCount <= 0 || width <= 0 {
		return ""
	}
	n := count * width / maxCount
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}
