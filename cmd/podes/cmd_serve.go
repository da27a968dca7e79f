package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard REST API",
		Long: `Serve village rows, aggregates, exports and the HTML dashboard over HTTP.

Rows are cached in memory for cache.ttl and optionally refreshed on
cache.refresh_schedule (cron syntax).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 8080, "HTTP port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP host")
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = a.v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	return cmd
}

func (a *app) runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := a.registry()
	if err != nil {
		return err
	}
	src, err := a.openSource(ctx, reg, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			a.logger.Warn("Error closing village source", zap.Error(err))
		}
	}()

	a.logger.Info("Starting podes",
		zap.String("version", version),
		zap.String("config", a.v.ConfigFileUsed()),
		zap.String("source", a.cfg.Source.Driver),
		zap.Int("categories", len(reg.Categories())))

	return server.New(a.cfg.Server, src, reg, a.logger).Run(ctx)
}
