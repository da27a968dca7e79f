// Package server exposes village rows and dashboard aggregates over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/spektr-org/podes/config"
	"github.com/spektr-org/podes/schema"
	"github.com/spektr-org/podes/source"
)

// Server serves the dashboard API.
type Server struct {
	cfg    config.ServerConfig
	src    source.Source
	reg    *schema.Registry
	logger *zap.Logger
	router *mux.Router
	now    func() time.Time
}

// New wires routes and middleware. src and reg must be non-nil; a nil
// logger disables logging.
func New(cfg config.ServerConfig, src source.Source, reg *schema.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		src:    src,
		reg:    reg,
		logger: logger,
		router: mux.NewRouter(),
		now:    time.Now,
	}

	s.router.Use(s.requestID)
	s.router.Use(s.recovery)
	s.router.Use(s.logRequests)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/villages", s.handleVillages).Methods(http.MethodGet)
	api.HandleFunc("/villages/metadata", s.handleMetadata).Methods(http.MethodGet)

	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{category}/kpi", s.handleKPI).Methods(http.MethodGet)

	ind := api.PathPrefix("/indicators/{key}").Subrouter()
	ind.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	ind.HandleFunc("/counts", s.handleCounts).Methods(http.MethodGet)
	ind.HandleFunc("/histogram", s.handleHistogram).Methods(http.MethodGet)
	ind.HandleFunc("/crosstab", s.handleCrossTab).Methods(http.MethodGet)
	ind.HandleFunc("/ranking", s.handleRanking).Methods(http.MethodGet)
	ind.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	ind.HandleFunc("/chart.png", s.handleChartPNG).Methods(http.MethodGet)

	api.HandleFunc("/comparison", s.handleComparison).Methods(http.MethodGet)
	api.HandleFunc("/comparison/export.csv", s.handleExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/comparison/export.xlsx", s.handleExportXLSX).Methods(http.MethodGet)
}

// Handler returns the router, wrapped in CORS handling when enabled.
func (s *Server) Handler() http.Handler {
	if !s.cfg.CORS.Enabled {
		return s.router
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   s.cfg.CORS.AllowedMethods,
		AllowedHeaders:   s.cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: s.cfg.CORS.AllowCredentials,
		MaxAge:           s.cfg.CORS.MaxAge,
	})
	return c.Handler(s.router)
}

// Run listens on the configured address until ctx is cancelled, then
// drains in-flight requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("Server shutdown completed")
	return nil
}
