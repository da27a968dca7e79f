// Package render turns engine results into presentable artifacts: an
// interactive ECharts dashboard page and static PNG charts.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/schema"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("render: no data")

const (
	chartWidth  = "900px"
	chartHeight = "420px"
	textColor   = "#37474F"
)

// ============================================================================
// DASHBOARD PAGE
// ============================================================================

// DashboardPage writes an HTML page for one category: per indicator the
// main chart (donut, histogram or binary split) followed by its stacked
// per-kecamatan distribution. Category "semua" renders every indicator.
func DashboardPage(w io.Writer, view engine.RecordView, reg *schema.Registry, category string, options ...engine.Option) error {
	if reg == nil {
		return errors.New("render: nil registry")
	}
	cat, err := reg.Category(category)
	if err != nil {
		return err
	}
	if view == nil || view.Len() == 0 {
		return ErrNoData
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("PODES 2024 Kota Batu: %s", cat.Title)
	page.SetLayout(components.PageFlexLayout)

	for _, ind := range cat.Indicators {
		res, err := engine.Execute(engine.IndicatorQuery{Indicator: ind.Key}, view, reg, options...)
		if err != nil {
			return fmt.Errorf("indicator %s: %w", ind.Key, err)
		}
		if res.Empty {
			continue
		}
		if c := chartFromConfig(res.ChartConfig); c != nil {
			page.AddCharts(c)
		}
		if c := chartFromConfig(res.StackConfig); c != nil {
			page.AddCharts(c)
		}
	}
	return page.Render(w)
}

// chartFromConfig maps a render-agnostic ChartConfig onto an ECharts chart.
func chartFromConfig(cfg *engine.ChartConfig) components.Charter {
	if cfg == nil || len(cfg.Series) == 0 {
		return nil
	}
	switch cfg.ChartType {
	case "donut":
		return donut(cfg)
	case "bar":
		return bar(cfg, "")
	case "stacked_bar":
		return bar(cfg, "kecamatan")
	default:
		return nil
	}
}

func donut(cfg *engine.ChartConfig) *charts.Pie {
	s := cfg.Series[0]
	data := make([]opts.PieData, 0, len(s.Data))
	for i, p := range s.Data {
		d := opts.PieData{Name: p.Label, Value: p.Value}
		if i < len(cfg.Colors) && cfg.Colors[i] != "" {
			d.ItemStyle = &opts.ItemStyle{Color: cfg.Colors[i]}
		}
		data = append(data, d)
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:      cfg.Title,
			TitleStyle: &opts.TextStyle{Color: textColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: "{b}: {c} desa ({d}%)",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(cfg.ShowLegend),
			Right:  "10",
			Orient: "vertical",
			Type:   "scroll",
		}),
	)
	pie.AddSeries(cfg.Title, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"40%", "70%"},
				Center: []string{"40%", "55%"},
			}),
		)
	return pie
}

func bar(cfg *engine.ChartConfig, stack string) *charts.Bar {
	b := charts.NewBar()
	b.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:      cfg.Title,
			TitleStyle: &opts.TextStyle{Color: textColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(cfg.ShowLegend),
			Top:  "30",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         cfg.XAxis,
			NameLocation: "center",
			NameGap:      30,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         cfg.YAxis,
			NameLocation: "center",
			NameGap:      40,
		}),
		charts.WithGridOpts(opts.Grid{Left: "60", Bottom: "60", Top: "70"}),
	)

	b.SetXAxis(axisLabels(cfg.Series[0].Data))
	for _, s := range cfg.Series {
		data := make([]opts.BarData, len(s.Data))
		for i, p := range s.Data {
			data[i] = opts.BarData{Value: p.Value}
		}
		seriesOpts := []charts.SeriesOpts{}
		if s.Color != "" {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		}
		if stack != "" {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: stack}))
		}
		b.AddSeries(s.Name, data, seriesOpts...)
	}
	return b
}

func axisLabels(points []engine.ChartPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}
