package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/config"
	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/schema"
	"github.com/spektr-org/podes/source"
)

// ============================================================================
// PODES CLI — PODES 2024 Kota Batu village dashboard
// ============================================================================

// version can be overridden at build time:
// go build -ldflags="-X main.version=vX.Y.Z" ./cmd/podes
var version = "0.3.0"

// app carries state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	stdout  io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), stdout: os.Stdout}

	root := &cobra.Command{
		Use:     "podes",
		Short:   "PODES 2024 village dashboard for Kota Batu",
		Long:    `podes serves and exports aggregated PODES 2024 village statistics: distribution summaries, per-kecamatan cross-tabs, rankings and village comparisons.`,
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stdout = cmd.OutOrStdout()
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./podes.yaml, $HOME/.podes/podes.yaml, /etc/podes/podes.yaml)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("registry", "", "Indicator registry YAML (default: embedded)")
	pf.String("source", "", "Village source driver (file, postgres, sqlite, mongo, http)")
	pf.String("data", "", "Village data file for the file source (.json or .csv)")

	_ = a.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("registry.path", pf.Lookup("registry"))
	_ = a.v.BindPFlag("source.driver", pf.Lookup("source"))
	_ = a.v.BindPFlag("source.path", pf.Lookup("data"))

	root.AddCommand(
		newServeCmd(a),
		newSummaryCmd(a),
		newCompareCmd(a),
		newRenderCmd(a),
		newDiscoverCmd(a),
		newVersionCmd(a),
	)
	return root
}

// init loads configuration and builds the logger.
func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// registry returns the configured registry, the embedded one by default.
func (a *app) registry() (*schema.Registry, error) {
	if a.cfg.Registry.Path == "" {
		return schema.Load()
	}
	return schema.LoadFile(a.cfg.Registry.Path)
}

// openSource opens the configured village source. Long-running callers ask
// for the cached wrapper.
func (a *app) openSource(ctx context.Context, reg *schema.Registry, cached bool) (source.Source, error) {
	src, err := source.New(ctx, a.cfg.Source, reg, a.logger)
	if err != nil {
		return nil, err
	}
	if !cached || !a.cfg.Cache.Enabled {
		return src, nil
	}
	c := source.NewCached(src, a.cfg.Cache.TTL, a.cfg.Cache.CleanupInterval, a.logger)
	if a.cfg.Cache.RefreshSchedule != "" {
		if err := c.StartRefresh(a.cfg.Cache.RefreshSchedule, a.cfg.Source.Timeout); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

// villages loads every row through a short-lived source.
func (a *app) villages(ctx context.Context, reg *schema.Registry) (engine.RecordView, error) {
	src, err := a.openSource(ctx, reg, false)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	rows, err := src.Villages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load villages: %w", err)
	}
	a.logger.Debug("Loaded villages", zap.Int("rows", len(rows)))
	return engine.NewSliceView(rows), nil
}
