package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	httpadapter "github.com/couchcryptid/iloc-catalog-etl/internal/adapter/http"
	"github.com/couchcryptid/iloc-catalog-etl/internal/adapter/iloc"
	"github.com/couchcryptid/iloc-catalog-etl/internal/adapter/inventory"
	kafkaadapter "github.com/couchcryptid/iloc-catalog-etl/internal/adapter/kafka"
	"github.com/couchcryptid/iloc-catalog-etl/internal/adapter/quakeml"
	"github.com/couchcryptid/iloc-catalog-etl/internal/config"
	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/couchcryptid/iloc-catalog-etl/internal/observability"
	"github.com/couchcryptid/iloc-catalog-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	inv, err := inventory.Load(cfg.InventoryFile)
	if err != nil {
		logger.Error("failed to load station inventory", "error", err)
		os.Exit(1)
	}
	logger.Info("station inventory loaded", "path", cfg.InventoryFile, "stations", inv.Len())

	selector := pipeline.NewCachedSelector(domain.InventorySelector{Inventory: inv}, metrics)
	enricher := pipeline.NewEnricher(selector, iloc.NewRelocator(logger), cfg.MaxStationDist, logger, metrics)

	// Initialize sinks (file via OUTPUT_FILE, Kafka via KAFKA_ENABLED / KAFKA_BROKERS).
	var sinks []pipeline.CatalogSink
	if cfg.OutputFile != "" {
		sinks = append(sinks, quakeml.FileSink{Path: cfg.OutputFile})
		logger.Info("file sink enabled", "path", cfg.OutputFile)
	}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	prov := domain.Provenance{
		ResourceID:  cfg.CatalogResourceID,
		Description: cfg.CatalogDescription,
	}
	p := pipeline.New(quakeml.FileSource{Path: cfg.EventFile}, enricher, sinks, prov, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One-shot mode: HTTP_ADDR="" runs the pipeline once and exits.
	if cfg.HTTPAddr == "" {
		runErr := p.Run(ctx)
		closeWriter(writer, logger)
		if runErr != nil {
			logger.Error("pipeline error", "error", runErr)
			os.Exit(1)
		}
		return
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Run the enrichment once; the result stays available over HTTP. Without
	// a catalog there is nothing to serve, so a load failure shuts down.
	var loadFailed atomic.Bool
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			if errors.Is(err, pipeline.ErrLoadCatalog) {
				loadFailed.Store(true)
				stop()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closeWriter(writer, logger)

	logger.Info("shutdown complete")
	if loadFailed.Load() {
		os.Exit(1)
	}
}

func closeWriter(writer *kafkaadapter.Writer, logger *slog.Logger) {
	if writer == nil {
		return
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}
