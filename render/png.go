package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/podes/engine"
)

// PNG canvas size.
var (
	pngWidth  = 10 * vg.Inch
	pngHeight = 6 * vg.Inch
)

// ============================================================================
// STATIC CHARTS (gonum/plot)
// ============================================================================

// RankedBarPNG draws points as a single bar series, in the given order.
func RankedBarPNG(w io.Writer, points []engine.ChartPoint, title string) error {
	if len(points) == 0 {
		return ErrNoData
	}

	p := newPlot(title, "Jumlah Desa")
	values := make(plotter.Values, len(points))
	labels := make([]string, len(points))
	maxValue := 0.0
	for i, pt := range points {
		values[i] = pt.Value
		labels[i] = pt.Label
		maxValue = math.Max(maxValue, pt.Value)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = hexColor(engine.PaletteColor(0), 0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	for i, v := range values {
		if v <= 0 {
			continue
		}
		label, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: float64(i), Y: v + maxValue*0.02}},
			Labels: []string{engine.FormatNumber(v)},
		})
		if err == nil {
			p.Add(label)
		}
	}

	p.NominalX(labels...)
	rotateTicks(p, len(labels))
	p.Y.Min = 0
	p.Y.Max = maxValue * 1.15
	return writePNG(w, p)
}

// StackedBarPNG draws one stacked bar per group, one layer per series.
// Every series must carry one point per group.
func StackedBarPNG(w io.Writer, series []engine.ChartSeries, groups []string, title string) error {
	if len(series) == 0 || len(groups) == 0 {
		return ErrNoData
	}

	p := newPlot(title, "Jumlah Desa")
	p.Legend.Top = true
	p.Legend.Left = false

	var below *plotter.BarChart
	totals := make([]float64, len(groups))
	for i, s := range series {
		if len(s.Data) != len(groups) {
			return fmt.Errorf("render: series %q has %d points for %d groups", s.Name, len(s.Data), len(groups))
		}
		values := make(plotter.Values, len(groups))
		for gi, pt := range s.Data {
			values[gi] = pt.Value
			totals[gi] += pt.Value
		}
		bars, err := plotter.NewBarChart(values, vg.Points(32))
		if err != nil {
			return fmt.Errorf("bar chart %s: %w", s.Name, err)
		}
		bars.Color = hexColor(s.Color, i)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	maxTotal := 0.0
	for _, t := range totals {
		maxTotal = math.Max(maxTotal, t)
	}
	p.NominalX(groups...)
	rotateTicks(p, len(groups))
	p.Y.Min = 0
	p.Y.Max = maxTotal * 1.25
	return writePNG(w, p)
}

func newPlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func rotateTicks(p *plot.Plot, n int) {
	if n <= 6 {
		return
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
}

func writePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// hexColor parses "#RRGGBB"; anything else falls back to palette entry i.
func hexColor(hex string, i int) color.Color {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		h = strings.TrimPrefix(engine.PaletteColor(i), "#")
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{R: 70, G: 130, B: 180, A: 255}
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}
}
