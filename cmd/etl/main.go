package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/heatwise/wetbulb-etl/internal/adapter/http"
	kafkaadapter "github.com/heatwise/wetbulb-etl/internal/adapter/kafka"
	"github.com/heatwise/wetbulb-etl/internal/adapter/prefs"
	"github.com/heatwise/wetbulb-etl/internal/adapter/registry"
	"github.com/heatwise/wetbulb-etl/internal/config"
	"github.com/heatwise/wetbulb-etl/internal/domain"
	"github.com/heatwise/wetbulb-etl/internal/observability"
	"github.com/heatwise/wetbulb-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize the station directory (feature-flagged via REGISTRY_URL / REGISTRY_ENABLED).
	var directory domain.StationDirectory
	if cfg.RegistryEnabled {
		client := registry.NewClient(cfg, logger, metrics)
		directory = registry.NewCachingDirectory(client, cfg.RegistryCacheSize, metrics)
		metrics.RegistryEnabled.Set(1)
		logger.Info("station registry enabled", "cache_size", cfg.RegistryCacheSize, "timeout", cfg.RegistryTimeout)
	} else {
		logger.Info("station registry disabled")
	}

	prefStore, err := prefs.Open(cfg.PrefsDBPath)
	if err != nil {
		logger.Error("failed to open preference store", "error", err, "path", cfg.PrefsDBPath)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewWetBulbTransformer(directory, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, prefStore, cfg.DefaultTheme, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := prefStore.Close(); err != nil {
		logger.Error("preference store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
