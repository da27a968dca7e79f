package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/podes/engine"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		indicator      string
		kecamatan      []string
		format         string
		reply          string
		top            int
		normalizeEmpty bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize one indicator",
		Long: `Run the indicator report: dominant category or totals, distribution,
per-kecamatan cross-tab and ranking.

Examples:
  podes summary --indicator kekuatan_sinyal --format text
  podes summary --indicator jumlah_sd --kecamatan batu,junrejo --top 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			view, err := a.villages(cmd.Context(), reg)
			if err != nil {
				return err
			}

			res, err := engine.Execute(engine.IndicatorQuery{
				Indicator:      indicator,
				Kecamatan:      splitList(kecamatan),
				NormalizeEmpty: normalizeEmpty,
				Reply:          reply,
				TopN:           top,
			}, view, reg, engine.WithLogger(a.logger))
			if err != nil {
				return err
			}

			switch format {
			case "text":
				_, err = fmt.Fprintln(a.stdout, res.Reply)
				return err
			case "json", "pretty":
				return writeJSON(a.stdout, res, format == "pretty")
			}
			return fmt.Errorf("unknown format %q (json, pretty, text)", format)
		},
	}
	cmd.Flags().StringVar(&indicator, "indicator", "", "Indicator key (required)")
	cmd.Flags().StringSliceVar(&kecamatan, "kecamatan", nil, "Restrict to these kecamatan")
	cmd.Flags().StringVar(&format, "format", "pretty", "Output format: json, pretty, text")
	cmd.Flags().StringVar(&reply, "reply", "", "Reply template, e.g. \"{dominant} di {percent} desa\"")
	cmd.Flags().IntVar(&top, "top", 0, "Keep only the top N ranked villages")
	cmd.Flags().BoolVar(&normalizeEmpty, "normalize-empty", false, "Count empty answers as \"Tidak Terdefinisi\"")
	_ = cmd.MarkFlagRequired("indicator")
	return cmd
}
