//go:generate mockgen -source=chart.go -destination=mocks/mock_renderer.go -package=mocks

// Package chart turns a frequency table into a bar chart description and
// hands it to a rendering sink. Sinks only see a Spec, so the console, the
// image writer and the dashboard are interchangeable.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/agbru/grovertally/internal/tally"
)

// Axis and title text used for experiment charts.
const (
	XLabel = "Output"
	YLabel = "Frequency of the outputs"
)

// Bar is one category of the chart.
type Bar struct {
	Label  string
	Output int64
	Count  int
}

// Spec is everything a sink needs to draw the chart.
type Spec struct {
	Title  string
	XLabel string
	YLabel string
	// Bars are in report order: descending count, ties by first appearance.
	Bars []Bar
	// XTicks are the x positions that carry a tick mark.
	XTicks []int64
	// XMin and XMax bound the numeric x axis.
	XMin, XMax float64
}

// Renderer draws a Spec.
type Renderer interface {
	Render(spec Spec) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(spec Spec) error

// Render calls f.
func (f RendererFunc) Render(spec Spec) error { return f(spec) }

// Title returns the chart title for a batch.
func Title(n uint64, trials int) string {
	return fmt.Sprintf("Outputs for Grover's factoring. N=%d, %d iterations", n, trials)
}

// MaxTicks bounds the number of tick marks on the x axis.
const MaxTicks = 64

// OddTicks returns odd integers 1, 3, 5, ... strictly below 2n. When that
// would exceed MaxTicks marks, the stride is widened to an even step so
// every tick stays odd.
func OddTicks(n uint64) []int64 {
	if n == 0 {
		return []int64{}
	}
	step := uint64(2)
	if n > MaxTicks {
		step = 2 * (n / MaxTicks)
		if n%MaxTicks != 0 {
			step += 2
		}
	}
	// For odd v, v < 2n is (v-1)/2 < n, which cannot overflow.
	ticks := make([]int64, 0, min(n, MaxTicks))
	for v := uint64(1); (v-1)/2 < n && v <= math.MaxInt64; v += step {
		ticks = append(ticks, int64(v))
	}
	return ticks
}

// NewSpec builds the chart for sorted entries of a batch of trials with
// problem size n.
func NewSpec(entries []tally.Entry, n uint64, trials int) Spec {
	bars := make([]Bar, len(entries))
	for i, e := range entries {
		bars[i] = Bar{Label: strconv.FormatInt(e.Output, 10), Output: e.Output, Count: e.Count}
	}
	return Spec{
		Title:  Title(n, trials),
		XLabel: XLabel,
		YLabel: YLabel,
		Bars:   bars,
		XTicks: OddTicks(n),
		XMin:   0,
		XMax:   2 * float64(n),
	}
}

// MaxCount returns the tallest bar, or 0 when there are none.
func (s Spec) MaxCount() int {
	maxCount := 0
	for _, b := range s.Bars {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	return maxCount
}

// Multi renders to every sink in order and joins their errors.
type Multi []Renderer

// Render draws spec on each sink. A failing sink does not stop the others.
func (m Multi) Render(spec Spec) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Render(spec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
