package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/schema"
)

func newDiscoverCmd(a *app) *cobra.Command {
	var (
		file       string
		sampleSize int
		pretty     bool
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Describe the columns of a village CSV export",
		Long: `Detect identity, quantitative and qualitative columns of a CSV export
and report which of them the indicator registry knows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}

			opts := schema.DefaultDiscoverOptions()
			opts.Registry = reg
			if sampleSize > 0 {
				opts.SampleSize = sampleSize
			}
			d, err := schema.DiscoverFromCSV(data, opts)
			if err != nil && !errors.Is(err, schema.ErrMissingIdentity) {
				return err
			}
			if err != nil {
				a.logger.Warn("No village id column; rows cannot be loaded from this file", zap.String("file", file))
			}
			a.logger.Info("Discovered columns",
				zap.Int("rows", d.Rows),
				zap.Int("quantitative", len(d.Keys(schema.RoleQuantitative))),
				zap.Int("qualitative", len(d.Keys(schema.RoleQualitative))),
				zap.Int("skipped", len(d.Keys(schema.RoleSkipped))))
			return writeJSON(a.stdout, d, pretty)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file (required)")
	cmd.Flags().IntVar(&sampleSize, "sample-rows", 0, "Rows to inspect (0 = all)")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "Indent JSON output")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
