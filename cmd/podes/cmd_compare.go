package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/helpers"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		desa       []string
		indicators []string
		kecamatan  []string
		format     string
		out        string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare up to five villages on two to five indicators",
		Long: `Build the village comparison summary and print it or export it.

Examples:
  podes compare --desa 3579011001,3579021001 --indicators jumlah_tk,jumlah_sd
  podes compare --desa 3579011001,3579021001 --indicators jumlah_tk,jumlah_sd --format csv --out ringkasan.csv
  podes compare --desa 3579011001,3579021001 --indicators jumlah_tk,jumlah_sd --format xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "json", "pretty", "csv", "xlsx":
			default:
				return fmt.Errorf("unknown format %q (json, pretty, csv, xlsx)", format)
			}
			if format == "xlsx" && out == "" {
				out = helpers.ComparisonFilename(time.Now(), "xlsx")
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

			res := engine.BuildComparison(view, splitList(desa), splitList(indicators), reg)
			if !res.IsValidForComparison {
				return fmt.Errorf("comparison needs at least one known village and %d indicators", engine.MinComparisonIndicators)
			}

			w, closeOut, err := openOutput(out, a.stdout)
			if err != nil {
				return err
			}
			switch format {
			case "csv":
				err = helpers.WriteComparisonCSV(w, res)
			case "xlsx":
				err = helpers.WriteComparisonXLSX(w, res)
			default:
				err = writeJSON(w, res, format == "pretty")
			}
			if err != nil {
				_ = closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}
			if out != "" {
				a.logger.Info("Comparison written", zap.String("path", out), zap.String("format", format))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&desa, "desa", nil, "Village ids (id_desa), at most 5")
	cmd.Flags().StringSliceVar(&indicators, "indicators", nil, "Indicator keys, 2 to 5")
	cmd.Flags().StringSliceVar(&kecamatan, "kecamatan", nil, "Restrict village lookup to these kecamatan")
	cmd.Flags().StringVar(&format, "format", "pretty", "Output format: json, pretty, csv, xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Write output to file instead of stdout")
	_ = cmd.MarkFlagRequired("desa")
	_ = cmd.MarkFlagRequired("indicators")
	return cmd
}
