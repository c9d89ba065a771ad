package services

import (
	"context"
	"testing"

	"contas/internal/core"
)

func seedAugust(store *fakeStore) {
	store.people = []core.Person{
		{ID: "p1", Name: "Ana", Income: 6000},
		{ID: "p2", Name: "Bruno", Income: 4000},
	}
	store.categories = []core.Category{
		{ID: "c1", Name: "Mercado", TargetPercent: 20},
		{ID: "c2", Name: "Liberdade Financeira", TargetPercent: 30},
	}
	store.transactions = []core.Transaction{
		{ID: "t1", Description: "Compras", Amount: 1500, CategoryID: "c1", PaidBy: "p1", Type: core.TypeExpense, Date: core.NewDate(2026, 8, 5)},
		{ID: "t2", Description: "Aporte", Amount: 3000, CategoryID: "c2", PaidBy: "p2", Type: core.TypeExpense, Date: core.NewDate(2026, 8, 10)},
	}
	store.statistics = []core.CategoryStatistics{
		{CategoryID: "c1", Mean: 100, StandardDeviation: 20},
	}
}

func TestMonthlyReport(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestReportService(store)

	report, err := svc.MonthlyReport(context.Background(), 2026, 8)
	if err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}

	if !almostEqual(report.TotalIncome, 10000) {
		t.Errorf("TotalIncome = %v, want 10000", report.TotalIncome)
	}
	if !almostEqual(report.EffectiveIncome, 10000) {
		t.Errorf("EffectiveIncome = %v, want 10000", report.EffectiveIncome)
	}
	if !almostEqual(report.TotalExpenses, 4500) {
		t.Errorf("TotalExpenses = %v, want 4500", report.TotalExpenses)
	}
	if len(report.Categories) != 2 {
		t.Fatalf("got %d summary rows, want 2", len(report.Categories))
	}

	// 1500 is far beyond mean 100 + 2*stddev 20 for c1.
	if len(report.Outliers) != 1 || report.Outliers[0].ID != "t1" {
		t.Errorf("Outliers = %+v, want just t1", report.Outliers)
	}

	if report.Health.Score < 0 || report.Health.Score > 100 {
		t.Errorf("health score %d out of range", report.Health.Score)
	}
}

func TestMonthlyReportCaching(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestReportService(store)
	ctx := context.Background()

	if _, err := svc.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}
	calls := store.listCalls
	if _, err := svc.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatalf("MonthlyReport (cached): %v", err)
	}
	if store.listCalls != calls {
		t.Errorf("second read hit storage (%d calls), want cached", store.listCalls)
	}

	svc.Invalidate(2026, 8)
	if _, err := svc.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatalf("MonthlyReport (after invalidate): %v", err)
	}
	if store.listCalls == calls {
		t.Error("read after invalidation should hit storage")
	}
}

func TestBatchHealth(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestReportService(store)

	periods := []Period{
		{Year: 2026, Month: 6},
		{Year: 2026, Month: 7},
		{Year: 2026, Month: 8},
	}
	results, err := svc.BatchHealth(context.Background(), periods)
	if err != nil {
		t.Fatalf("BatchHealth: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Period != periods[i] {
			t.Errorf("result %d period = %v, want %v (order must be preserved)", i, r.Period, periods[i])
		}
		if r.Health.Score < 0 || r.Health.Score > 100 {
			t.Errorf("period %v score %d out of range", r.Period, r.Health.Score)
		}
	}
}

func TestBatchHealthLimit(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestReportService(store)

	periods := make([]Period, BatchHealthLimit+1)
	for i := range periods {
		periods[i] = Period{Year: 2026, Month: 1 + i%12}
	}
	if _, err := svc.BatchHealth(context.Background(), periods); err == nil {
		t.Error("BatchHealth should reject more than the period limit")
	}

	if results, err := svc.BatchHealth(context.Background(), nil); err != nil || results != nil {
		t.Errorf("BatchHealth(nil) = %v, %v; want nil, nil", results, err)
	}
}

func TestEffectiveDay(t *testing.T) {
	store := newFakeStore()
	svc := newTestReportService(store) // clock fixed at 2026-08-31

	tests := []struct {
		name        string
		year, month int
		want        int
	}{
		{"current month uses today", 2026, 8, 31},
		{"past month runs full", 2026, 7, core.DaysInFullMonth},
		{"past year runs full", 2025, 12, core.DaysInFullMonth},
		{"future month starts at day one", 2026, 9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.effectiveDay(tt.year, tt.month); got != tt.want {
				t.Errorf("effectiveDay(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}
