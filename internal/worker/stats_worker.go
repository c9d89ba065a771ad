// Package worker runs the async side of the system: statistics recomputes
// triggered by transaction writes, and report exports on month close.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"contas/internal/amqp"
	"contas/internal/export"
	"contas/internal/services"
)

// StatsWorker consumes period messages and reacts to them.
type StatsWorker struct {
	client   *amqp.Client
	stats    *services.StatisticsService
	reports  *services.ReportService
	exporter export.ReportExporter
}

func NewStatsWorker(client *amqp.Client, stats *services.StatisticsService, reports *services.ReportService, exporter export.ReportExporter) *StatsWorker {
	return &StatsWorker{
		client:   client,
		stats:    stats,
		reports:  reports,
		exporter: exporter,
	}
}

// Run consumes both queues until ctx is cancelled.
func (w *StatsWorker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.client.ConsumeStatsRecalc(gctx, func(msg *amqp.PeriodMessage) error {
			return w.HandleStatsRecalc(gctx, msg)
		})
	})
	g.Go(func() error {
		return w.client.ConsumeMonthClosed(gctx, func(msg *amqp.PeriodMessage) error {
			return w.HandleMonthClosed(gctx, msg)
		})
	})

	err := g.Wait()
	if ctx.Err() != nil {
		// Normal shutdown.
		return nil
	}
	return err
}

// HandleStatsRecalc rebuilds the category statistics. The message period is
// informational: the recompute always covers the full trailing window.
func (w *StatsWorker) HandleStatsRecalc(ctx context.Context, msg *amqp.PeriodMessage) error {
	slog.InfoContext(ctx, "Recomputing statistics",
		"year", msg.Year,
		"month", msg.Month)

	if _, err := w.stats.Recompute(ctx); err != nil {
		return fmt.Errorf("recompute statistics: %w", err)
	}
	return nil
}

// HandleMonthClosed exports the closed period's report.
func (w *StatsWorker) HandleMonthClosed(ctx context.Context, msg *amqp.PeriodMessage) error {
	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping report export",
			"year", msg.Year,
			"month", msg.Month)
		return nil
	}

	report, err := w.reports.MonthlyReport(ctx, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("build report for %04d-%02d: %w", msg.Year, msg.Month, err)
	}

	if err := w.exporter.ExportMonthlyReport(ctx, report); err != nil {
		return fmt.Errorf("export report for %04d-%02d: %w", msg.Year, msg.Month, err)
	}

	slog.InfoContext(ctx, "Closed month exported",
		"year", msg.Year,
		"month", msg.Month,
		"health_score", report.Health.Score)
	return nil
}
