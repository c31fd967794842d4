// Package main provides the entry point for the publication cost service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pubcost/publication-cost-service/internal/analysis"
	"github.com/pubcost/publication-cost-service/internal/config"
	"github.com/pubcost/publication-cost-service/internal/observability"
	"github.com/pubcost/publication-cost-service/internal/openalex"
	httpserver "github.com/pubcost/publication-cost-service/internal/server/http"
	"github.com/pubcost/publication-cost-service/internal/taxonomy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("publication-cost-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the publisher taxonomy. A bad taxonomy is fatal at startup.
	tax, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}
	if cfg.Taxonomy.Path != "" {
		logger.Info().Str("path", cfg.Taxonomy.Path).Msg("publisher taxonomy loaded")
	} else {
		logger.Info().Msg("using built-in publisher taxonomy")
	}

	// Set up metrics.
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	// Create the OpenAlex client and the aggregation engine.
	source := openalex.New(openalex.Config{
		BaseURL:   cfg.OpenAlex.BaseURL,
		Email:     cfg.OpenAlex.Email,
		Timeout:   cfg.OpenAlex.Timeout,
		RateLimit: cfg.OpenAlex.RateLimit,
		BurstSize: cfg.OpenAlex.BurstSize,
		PerPage:   cfg.OpenAlex.PerPage,
	}, metrics)

	engine := analysis.NewEngine(tax, logger, metrics)

	// Create the HTTP REST API server.
	httpCfg := httpserver.Config{
		Address:            cfg.Server.HTTPAddress(),
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        2 * time.Minute,
		ShutdownTimeout:    cfg.Server.ShutdownTimeout,
		MaxWorks:           cfg.Analysis.MaxWorks,
		ChartTopPublishers: cfg.Analysis.ChartTopPublishers,
	}
	httpSrv := httpserver.NewServer(httpCfg, source, engine, logger, metrics)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	// Start HTTP REST API server in background.
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start metrics server if configured.
	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("publication-cost-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down publication-cost-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("publication-cost-service shutdown complete")
	return nil
}
