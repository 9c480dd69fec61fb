package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/balloon-drift-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/balloon-drift-service/internal/adapter/kafka"
	"github.com/couchcryptid/balloon-drift-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/balloon-drift-service/internal/adapter/relay"
	"github.com/couchcryptid/balloon-drift-service/internal/adapter/snapshot"
	"github.com/couchcryptid/balloon-drift-service/internal/config"
	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/couchcryptid/balloon-drift-service/internal/observability"
	"github.com/couchcryptid/balloon-drift-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Wind enrichment (feature-flagged via WIND_ENABLED).
	var wind domain.WindProvider
	if cfg.WindEnabled {
		client := openmeteo.NewClient(cfg.WindBaseURL, cfg.WindTimeout, metrics, logger)
		wind = openmeteo.NewCachedProvider(client, cfg.WindCacheSize, metrics, clock)
		metrics.WindEnabled.Set(1)
		logger.Info("wind enrichment enabled",
			"cache_size", cfg.WindCacheSize,
			"timeout", cfg.WindTimeout,
			"subset", cfg.WindSubsetSize,
			"batch", cfg.WindBatchSize,
		)
	} else {
		logger.Info("wind enrichment disabled")
	}

	// Snapshot sink (feature-flagged via KAFKA_ENABLED).
	var loader pipeline.SnapshotLoader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	source := snapshot.NewHTTPSource(cfg.SnapshotBaseURL, cfg.SnapshotTimeout, logger)
	fetcher := pipeline.NewFetcher(source, cfg.SnapshotHours, logger, metrics)
	enricher := pipeline.NewEnricher(wind, logger)

	p := pipeline.New(fetcher, enricher, loader, pipeline.Options{
		RefreshInterval: cfg.RefreshInterval,
		SubsetSize:      cfg.WindSubsetSize,
		BatchSize:       cfg.WindBatchSize,
	}, clock, logger, metrics)

	var routes []httpadapter.Route
	if cfg.RelayEnabled {
		routes = append(routes, httpadapter.Route{
			Pattern: cfg.RelayPrefix,
			Handler: relay.NewHandler(cfg.RelayPrefix, cfg.RelayUpstream, cfg.SnapshotTimeout, logger),
		})
		logger.Info("upstream relay enabled", "prefix", cfg.RelayPrefix, "upstream", cfg.RelayUpstream)
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, routes...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingestion cycles.
	done := make(chan struct{})
	go func() {
		defer close(done)
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
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
