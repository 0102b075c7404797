package chart

import (
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	apperrors "github.com/agbru/grovertally/internal/errors"
)

// Supported image extensions for PlotRenderer.
var plotFormats = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true, ".eps": true,
}

var barColor = color.RGBA{R: 0xFF, G: 0x8C, B: 0x00, A: 0xFF}

// PlotRenderer writes the chart to an image file with gonum/plot. Bars sit at
// their numeric output value on the x axis, which carries the tick marks
// from the Spec.
type PlotRenderer struct {
	Path   string
	Width  vg.Length
	Height vg.Length
}

// NewPlotRenderer validates the file extension and returns a renderer with a
// default 8x5 inch canvas.
func NewPlotRenderer(path string) (*PlotRenderer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !plotFormats[ext] {
		return nil, apperrors.NewConfigError("unsupported chart file extension %q for %s", ext, path)
	}
	return &PlotRenderer{Path: path, Width: 8 * vg.Inch, Height: 5 * vg.Inch}, nil
}

// Render builds the plot and saves it.
func (p *PlotRenderer) Render(spec Spec) error {
	pl, err := BuildPlot(spec)
	if err != nil {
		return err
	}
	if err := pl.Save(p.Width, p.Height, p.Path); err != nil {
		return apperrors.WrapError(err, "saving chart to %s", p.Path)
	}
	return nil
}

// BuildPlot converts a Spec into a gonum plot.
func BuildPlot(spec Spec) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = spec.Title
	pl.X.Label.Text = spec.XLabel
	pl.Y.Label.Text = spec.YLabel

	for _, b := range spec.Bars {
		bc, err := plotter.NewBarChart(plotter.Values{float64(b.Count)}, vg.Points(10))
		if err != nil {
			return nil, apperrors.WrapError(err, "building bar for output %d", b.Output)
		}
		bc.XMin = float64(b.Output)
		bc.Color = barColor
		bc.LineStyle.Width = 0
		pl.Add(bc)
	}

	ticks := make([]plot.Tick, len(spec.XTicks))
	for i, v := range spec.XTicks {
		ticks[i] = plot.Tick{Value: float64(v), Label: strconv.FormatInt(v, 10)}
	}
	pl.X.Tick.Marker = plot.ConstantTicks(ticks)

	// Axis ranges start at +Inf/-Inf until data is added.
	pl.X.Min = math.Min(pl.X.Min, spec.XMin)
	pl.X.Max = math.Max(pl.X.Max, spec.XMax)
	pl.Y.Min = 0
	pl.Y.Max = math.Max(pl.Y.Max, 1)
	return pl, nil
}
