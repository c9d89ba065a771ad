package services

import (
	"context"
	"testing"
	"time"

	"contas/internal/core"
)

func TestComputeCategoryStatistics(t *testing.T) {
	transactions := []core.Transaction{
		{ID: "t1", Amount: 80, CategoryID: "c1", Type: core.TypeExpense, Date: core.NewDate(2026, 6, 5)},
		{ID: "t2", Amount: 100, CategoryID: "c1", Type: core.TypeExpense, Date: core.NewDate(2026, 7, 5)},
		{ID: "t3", Amount: 120, CategoryID: "c1", Type: core.TypeExpense, Date: core.NewDate(2026, 8, 5)},
		{ID: "t4", Amount: 50, CategoryID: "c2", Type: core.TypeExpense, Date: core.NewDate(2026, 8, 6)},
		// Ignored: income, uncategorized, forecast.
		{ID: "t5", Amount: 999, Type: core.TypeIncome, Date: core.NewDate(2026, 8, 7)},
		{ID: "t6", Amount: 999, CategoryID: "c1", Type: core.TypeExpense, IsForecast: true, Date: core.NewDate(2026, 8, 8)},
	}

	stats := ComputeCategoryStatistics(transactions)
	if len(stats) != 2 {
		t.Fatalf("got %d categories, want 2", len(stats))
	}

	c1 := stats[0]
	if c1.CategoryID != "c1" {
		t.Fatalf("first category = %s, want c1 (sorted)", c1.CategoryID)
	}
	if !almostEqual(c1.Mean, 100) {
		t.Errorf("c1 mean = %v, want 100", c1.Mean)
	}
	// Population stddev of {80, 100, 120} is sqrt(800/3).
	if !almostEqual(c1.StandardDeviation, 16.3299) {
		t.Errorf("c1 stddev = %v, want ~16.33", c1.StandardDeviation)
	}

	c2 := stats[1]
	if !almostEqual(c2.Mean, 50) || !almostEqual(c2.StandardDeviation, 0) {
		t.Errorf("c2 = %+v, want mean 50 stddev 0", c2)
	}
}

func TestComputeCategoryStatisticsEmpty(t *testing.T) {
	if stats := ComputeCategoryStatistics(nil); len(stats) != 0 {
		t.Errorf("got %d stats from no transactions, want 0", len(stats))
	}
}

func TestRecomputeTrailingWindow(t *testing.T) {
	store := newFakeStore()
	store.transactions = []core.Transaction{
		// Inside a 6-month window ending 2026-08: from 2026-03-01 on.
		{ID: "in", Amount: 100, CategoryID: "c1", Type: core.TypeExpense, Date: core.NewDate(2026, 3, 1)},
		// Outside the window.
		{ID: "out", Amount: 9000, CategoryID: "c1", Type: core.TypeExpense, Date: core.NewDate(2026, 2, 28)},
	}

	reports := newTestReportService(store)
	svc := NewStatisticsService(store, reports, 6)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	}

	stats, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d categories, want 1", len(stats))
	}
	if !almostEqual(stats[0].Mean, 100) {
		t.Errorf("mean = %v, want 100 (out-of-window transaction must be ignored)", stats[0].Mean)
	}
	if len(store.statistics) != 1 {
		t.Errorf("statistics were not persisted (got %d rows)", len(store.statistics))
	}
}

func TestRecomputePurgesReportCache(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	reports := newTestReportService(store)
	ctx := context.Background()

	if _, err := reports.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}
	calls := store.listCalls

	svc := NewStatisticsService(store, reports, 6)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	}
	if _, err := svc.Recompute(ctx); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	if _, err := reports.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatalf("MonthlyReport after recompute: %v", err)
	}
	if store.listCalls == calls {
		t.Error("report should be recomputed after a statistics refresh")
	}
}
