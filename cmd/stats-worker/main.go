package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/config"
	"contas/internal/export"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
	"contas/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.Setup(cfg.LogFormat, cfg.LogLevel).WithComponent(log.ComponentWorker)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the stats worker")
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var exporter export.ReportExporter
	if cfg.ExportEnabled {
		sheets, err := export.NewSheetsExporter(ctx, export.SheetsConfig{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = sheets
		logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Report export disabled")
	}

	reportCache := cache.NewLRU[services.Report](cfg.CacheSize, cfg.CacheTTL)
	go cache.StartJanitor(ctx, 10*time.Minute, reportCache)

	reports := services.NewReportService(repo, reportCache)
	stats := services.NewStatisticsService(repo, reports, cfg.StatsWindowMonths)
	statsWorker := worker.NewStatsWorker(client, stats, reports, exporter)

	// One recompute on startup covers messages missed while down.
	if _, err := stats.Recompute(ctx); err != nil {
		logger.Error("Startup statistics recompute failed", log.FieldError, err)
	}

	logger.Info("Starting stats worker", "exchange", cfg.AMQPExchange)
	if err := statsWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
