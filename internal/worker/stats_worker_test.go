package worker

import (
	"context"
	"testing"
	"time"

	"contas/internal/amqp"
	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/export"
	"contas/internal/services"
)

type stubStore struct {
	people       []core.Person
	categories   []core.Category
	transactions []core.Transaction
	statistics   []core.CategoryStatistics
}

func (s *stubStore) ListPeople(ctx context.Context) ([]core.Person, error) {
	return s.people, nil
}

func (s *stubStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.categories, nil
}

func (s *stubStore) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.Date.Year() == year && t.Date.Month() == month {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) ListTransactionsSince(ctx context.Context, from core.Date) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range s.transactions {
		if !t.Date.Before(from.Time) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) GetStatistics(ctx context.Context) ([]core.CategoryStatistics, error) {
	return s.statistics, nil
}

func (s *stubStore) ReplaceStatistics(ctx context.Context, stats []core.CategoryStatistics) error {
	s.statistics = stats
	return nil
}

func newTestWorker(store *stubStore, exporter export.ReportExporter) *StatsWorker {
	reports := services.NewReportService(store, cache.NewLRU[services.Report](8, time.Minute))
	stats := services.NewStatisticsService(store, reports, 6)
	return NewStatsWorker(nil, stats, reports, exporter)
}

func TestHandleStatsRecalc(t *testing.T) {
	store := &stubStore{
		transactions: []core.Transaction{
			{ID: "t1", Amount: 100, CategoryID: "c1", Type: core.TypeExpense, Date: core.NewDate(time.Now().Year(), int(time.Now().Month()), 1)},
		},
	}
	w := newTestWorker(store, nil)

	err := w.HandleStatsRecalc(context.Background(), amqp.NewPeriodMessage(2026, 8))
	if err != nil {
		t.Fatalf("HandleStatsRecalc: %v", err)
	}
	if len(store.statistics) != 1 {
		t.Errorf("got %d statistics rows, want 1", len(store.statistics))
	}
}

func TestHandleMonthClosed(t *testing.T) {
	store := &stubStore{
		people:     []core.Person{{ID: "p1", Name: "Ana", Income: 5000}},
		categories: []core.Category{{ID: "c1", Name: "Mercado", TargetPercent: 20}},
		transactions: []core.Transaction{
			{ID: "t1", Description: "Compras", Amount: 800, CategoryID: "c1", PaidBy: "p1", Type: core.TypeExpense, Date: core.NewDate(2026, 7, 10)},
		},
	}
	exporter := export.NewMemoryExporter()
	w := newTestWorker(store, exporter)

	err := w.HandleMonthClosed(context.Background(), amqp.NewPeriodMessage(2026, 7))
	if err != nil {
		t.Fatalf("HandleMonthClosed: %v", err)
	}

	reports := exporter.Reports()
	if len(reports) != 1 {
		t.Fatalf("got %d exported reports, want 1", len(reports))
	}
	if reports[0].Year != 2026 || reports[0].Month != 7 {
		t.Errorf("exported period = %d-%02d, want 2026-07", reports[0].Year, reports[0].Month)
	}
	if reports[0].TotalExpenses != 800 {
		t.Errorf("exported TotalExpenses = %v, want 800", reports[0].TotalExpenses)
	}
}

func TestHandleMonthClosedWithoutExporter(t *testing.T) {
	w := newTestWorker(&stubStore{}, nil)

	// No exporter configured: the message is acked, not requeued forever.
	if err := w.HandleMonthClosed(context.Background(), amqp.NewPeriodMessage(2026, 7)); err != nil {
		t.Fatalf("HandleMonthClosed without exporter should not error, got %v", err)
	}
}
