package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/gios"
	httpadapter "github.com/couchcryptid/air-quality-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/air-quality-etl/internal/adapter/kafka"
	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/couchcryptid/air-quality-etl/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	catalogue, err := gios.NewCatalogue(cfg.ArchiveIDs, cfg.ArchiveFiles)
	if err != nil {
		logger.Error("invalid archive catalogue", "error", err)
		os.Exit(1)
	}

	// Archives come from disk when GIOS_ARCHIVE_DIR is set, otherwise from GIOŚ.
	var source gios.RawTableSource
	if cfg.ArchiveDir != "" {
		source = gios.NewDirSource(cfg.ArchiveDir, catalogue, logger)
		logger.Info("reading archives from disk", "dir", cfg.ArchiveDir)
	} else {
		source = gios.NewClient(cfg.ArchiveBaseURL, catalogue, cfg.FetchTimeout, cfg.FetchRetries, metrics, logger)
		logger.Info("downloading archives", "url", cfg.ArchiveBaseURL, "timeout", cfg.FetchTimeout, "retries", cfg.FetchRetries)
	}
	cached, err := gios.NewCachedSource(source, cfg.ArchiveCacheLen, metrics)
	if err != nil {
		logger.Error("failed to create archive cache", "error", err)
		os.Exit(1)
	}
	metadata := gios.NewMetadataFile(cfg.MetadataPath, logger)

	// Publishing is feature-flagged via KAFKA_ENABLED.
	var (
		loader pipeline.ReportLoader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	p := pipeline.New(cached, metadata, loader, logger, metrics, cfg.Norm)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the job once; the server keeps serving its result until shutdown.
	go func() {
		report, err := p.Run(ctx, cfg.Years)
		if err != nil {
			logger.Error("pipeline error", "error", err)
			return
		}
		for _, r := range report.ExceedanceRecords() {
			logger.Info("exceedance days",
				"year", r.Year,
				"station", r.StationCode,
				"locality", r.Locality,
				"days", r.ExceedanceDays,
			)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
