package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/config"
	apphttp "contas/internal/http"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
)

func main() {
	// .env is for local development; absent in containers.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.Setup(cfg.LogFormat, cfg.LogLevel).WithComponent(log.ComponentApp)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP connected", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP not configured, statistics recompute runs inline")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reportCache := cache.NewLRU[services.Report](cfg.CacheSize, cfg.CacheTTL)
	go cache.StartJanitor(ctx, 10*time.Minute, reportCache)

	reports := services.NewReportService(repo, reportCache)
	stats := services.NewStatisticsService(repo, reports, cfg.StatsWindowMonths)
	ledger := services.NewLedgerService(repo, reports, stats, publisher)
	sims := services.NewSimulationService(repo, repo)

	registry := prometheus.NewRegistry()
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:      ledger,
		Reports:     reports,
		Simulations: sims,
		Pinger:      repo,
		Logger:      logger,
		Registry:    registry,
	})

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting contas server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
