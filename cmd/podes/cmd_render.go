package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/render"
	"github.com/spektr-org/podes/schema"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		indicator string
		category  string
		kind      string
		kecamatan []string
		out       string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an indicator chart (PNG) or a category dashboard (HTML)",
		Long: `Render a static chart or the interactive dashboard page.

Kinds:
  bar        histogram (quantitative) or ranked category counts, PNG
  stacked    per-kecamatan stacked distribution, PNG
  dashboard  ECharts HTML page for --category

Examples:
  podes render --indicator jumlah_posyandu --kind bar --out posyandu.png
  podes render --indicator kekuatan_sinyal --kind stacked --out sinyal.png
  podes render --kind dashboard --category infrastruktur --out infrastruktur.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch kind {
			case "bar", "stacked":
				if indicator == "" {
					return fmt.Errorf("--indicator is required for kind %s", kind)
				}
			case "dashboard":
			default:
				return fmt.Errorf("unknown kind %q (bar, stacked, dashboard)", kind)
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			view, err := a.villages(cmd.Context(), reg)
			if err != nil {
				return err
			}
			view = engine.ApplyFilters(view, engine.KecamatanFilter(splitList(kecamatan)...))

			w, closeOut, err := openOutput(out, a.stdout)
			if err != nil {
				return err
			}
			if kind == "dashboard" {
				err = render.DashboardPage(w, view, reg, category, engine.WithLogger(a.logger))
			} else {
				err = renderIndicator(w, view, reg, indicator, kind)
			}
			if err != nil {
				_ = closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}
			a.logger.Info("Rendered", zap.String("kind", kind), zap.String("path", out))
			return nil
		},
	}
	cmd.Flags().StringVar(&indicator, "indicator", "", "Indicator key")
	cmd.Flags().StringVar(&category, "category", schema.AllCategoryKey, "Category for the dashboard")
	cmd.Flags().StringVar(&kind, "kind", "bar", "Chart kind: bar, stacked, dashboard")
	cmd.Flags().StringSliceVar(&kecamatan, "kecamatan", nil, "Restrict to these kecamatan")
	cmd.Flags().StringVar(&out, "out", "", "Output file (required)")
	return cmd
}

func renderIndicator(w io.Writer, view engine.RecordView, reg *schema.Registry, key, kind string) error {
	res, err := engine.Execute(engine.IndicatorQuery{Indicator: key}, view, reg)
	if err != nil {
		return err
	}
	if res.Empty {
		return render.ErrNoData
	}
	if kind == "stacked" {
		var groups []string
		if res.CrossTab != nil {
			groups = res.CrossTab.Groups
		}
		return render.StackedBarPNG(w, res.Stacked, groups, res.Indicator.Label+" per Kecamatan")
	}

	points := res.RankedBar
	if res.Indicator.IsQuantitative() {
		points = make([]engine.ChartPoint, len(res.Histogram))
		for i, b := range res.Histogram {
			points[i] = engine.ChartPoint{Label: b.Bucket, Value: float64(b.Count)}
		}
	}
	return render.RankedBarPNG(w, points, res.Indicator.Label)
}
