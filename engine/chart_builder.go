package engine

import "strings"

// ============================================================================
// CHART BUILDER — Shapes aggregation output into chart series
// ============================================================================
// Colors come from a label → color lookup first, then the default palette
// indexed by the entry's position in its input.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Fixed colors for the presence split.
const (
	ColorAda      = "#10B981"
	ColorTidakAda = "#EF4444"
)

// PaletteColor returns the default palette color for position i.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return defaultColors[i%len(defaultColors)]
}

func colorFor(label string, pos int, colors map[string]string) string {
	if c, ok := colors[label]; ok && c != "" {
		return c
	}
	// Case-insensitive match.
	for k, c := range colors {
		if c != "" && strings.EqualFold(k, label) {
			return c
		}
	}
	return PaletteColor(pos)
}

// ============================================================================
// SERIES ADAPTERS
// ============================================================================

// ToDonutSeries converts labeled counts into donut slices. Zero-valued
// slices are kept unless WithDropZeros is set.
func ToDonutSeries(entries []LabeledCount, colors map[string]string, opts ...Option) []DonutSlice {
	cfg := applyOptions(opts)
	out := make([]DonutSlice, 0, len(entries))
	for i, e := range entries {
		if cfg.DropZeros && e.Count == 0 {
			continue
		}
		out = append(out, DonutSlice{
			Label: e.Label,
			Value: float64(e.Count),
			Color: colorFor(e.Label, i, colors),
		})
	}
	return out
}

// ToRankedBarSeries returns one point per category, count descending.
// Ties keep first-seen order.
func ToRankedBarSeries(counts CategoryCounts) []ChartPoint {
	ranked := counts.Ranked()
	out := make([]ChartPoint, len(ranked))
	for i, e := range ranked {
		out[i] = ChartPoint{Label: e.Label, Value: float64(e.Count)}
	}
	return out
}

// ToGroupedStackedSeries turns a cross-tab into one series per category
// with one point per group, ready for a stacked bar chart.
func ToGroupedStackedSeries(ct CrossTab, colors map[string]string) []ChartSeries {
	out := make([]ChartSeries, len(ct.Series))
	for i, s := range ct.Series {
		points := make([]ChartPoint, len(ct.Groups))
		for gi, g := range ct.Groups {
			points[gi] = ChartPoint{Label: g, Value: float64(s.Data[gi])}
		}
		out[i] = ChartSeries{
			Name:  s.Name,
			Data:  points,
			Color: colorFor(s.Name, i, colors),
		}
	}
	return out
}

// ToBinarySeries renders a presence split as two slices, "Ada" first.
func ToBinarySeries(split BinarySplit, colors map[string]string) []DonutSlice {
	ada := ColorAda
	tidak := ColorTidakAda
	if c, ok := colors[LabelAda]; ok {
		ada = c
	}
	if c, ok := colors[LabelTidakAda]; ok {
		tidak = c
	}
	return []DonutSlice{
		{Label: LabelAda, Value: float64(split.Ada), Color: ada},
		{Label: LabelTidakAda, Value: float64(split.TidakAda), Color: tidak},
	}
}

// ============================================================================
// CHART CONFIG
// ============================================================================

// DonutChart wraps donut slices in a ChartConfig.
func DonutChart(title string, slices []DonutSlice) *ChartConfig {
	points := make([]ChartPoint, len(slices))
	colors := make([]string, len(slices))
	for i, s := range slices {
		points[i] = ChartPoint{Label: s.Label, Value: s.Value}
		colors[i] = s.Color
	}
	return &ChartConfig{
		ChartType:  "donut",
		Title:      title,
		Series:     []ChartSeries{{Name: title, Data: points}},
		Colors:     colors,
		ShowLegend: true,
	}
}

// BarChart wraps histogram buckets in a ChartConfig.
func BarChart(title, xAxis string, buckets []HistogramBucket, color string) *ChartConfig {
	points := make([]ChartPoint, len(buckets))
	for i, b := range buckets {
		points[i] = ChartPoint{Label: b.Bucket, Value: float64(b.Count)}
	}
	if color == "" {
		color = PaletteColor(0)
	}
	return &ChartConfig{
		ChartType: "bar",
		Title:     title,
		XAxis:     xAxis,
		YAxis:     "Jumlah Desa",
		Series:    []ChartSeries{{Name: title, Data: points, Color: color}},
		Colors:    []string{color},
		ShowGrid:  true,
	}
}

// StackedBarChart wraps grouped series in a ChartConfig.
func StackedBarChart(title string, series []ChartSeries) *ChartConfig {
	colors := make([]string, len(series))
	for i, s := range series {
		colors[i] = s.Color
	}
	return &ChartConfig{
		ChartType:  "stacked_bar",
		Title:      title,
		XAxis:      "Kecamatan",
		YAxis:      "Jumlah Desa",
		Series:     series,
		Colors:     colors,
		ShowLegend: true,
		ShowGrid:   true,
	}
}
