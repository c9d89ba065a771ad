package services

import (
	"context"
	"errors"
	"testing"

	"contas/internal/core"
)

func newTestLedger(store *fakeStore, publisher Publisher) *LedgerService {
	reports := newTestReportService(store)
	stats := NewStatisticsService(store, reports, 6)
	return NewLedgerService(store, reports, stats, publisher)
}

func TestCreateTransactionPublishesRecalc(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	publisher := &fakePublisher{}
	svc := newTestLedger(store, publisher)

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{
		Description: "Farmácia",
		Amount:      80,
		CategoryID:  "c1",
		PaidBy:      "p1",
		Type:        core.TypeExpense,
		Date:        core.NewDate(2026, 8, 20),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if len(publisher.statsRecalc) != 1 {
		t.Fatalf("got %d recalc messages, want 1", len(publisher.statsRecalc))
	}
	if p := publisher.statsRecalc[0]; p.Year != 2026 || p.Month != 8 {
		t.Errorf("recalc period = %v, want 2026-08", p)
	}
}

func TestCreateTransactionValidates(t *testing.T) {
	store := newFakeStore()
	svc := newTestLedger(store, &fakePublisher{})

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{
		Description: "Sem categoria",
		Amount:      80,
		PaidBy:      "p1",
		Type:        core.TypeExpense,
		Date:        core.NewDate(2026, 8, 20),
	})
	if !errors.Is(err, core.ErrExpenseNeedsCtg) {
		t.Errorf("CreateTransaction = %v, want ErrExpenseNeedsCtg", err)
	}
	if len(store.transactions) != 0 {
		t.Error("invalid transaction must not be stored")
	}
}

func TestCreateTransactionSurvivesPublishFailure(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := newTestLedger(store, publisher)

	created, err := svc.CreateTransaction(context.Background(), core.Transaction{
		Description: "Farmácia",
		Amount:      80,
		CategoryID:  "c1",
		PaidBy:      "p1",
		Type:        core.TypeExpense,
		Date:        core.NewDate(2026, 8, 20),
	})
	if err != nil {
		t.Fatalf("CreateTransaction should not fail on publish error, got %v", err)
	}
	if _, err := store.GetTransaction(context.Background(), created.ID); err != nil {
		t.Errorf("transaction should be persisted despite publish failure: %v", err)
	}
}

func TestInlineRecomputeWithoutBroker(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	store.statistics = nil
	svc := newTestLedger(store, nil)
	svc.stats.now = svc.reports.now

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{
		Description: "Farmácia",
		Amount:      80,
		CategoryID:  "c1",
		PaidBy:      "p1",
		Type:        core.TypeExpense,
		Date:        core.NewDate(2026, 8, 20),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if len(store.statistics) == 0 {
		t.Error("statistics should be recomputed inline when no broker is configured")
	}
}

func TestUpdateTransactionInvalidatesOldPeriod(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestLedger(store, &fakePublisher{})
	ctx := context.Background()

	// Warm both period caches.
	if _, err := svc.reports.MonthlyReport(ctx, 2026, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.reports.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatal(err)
	}
	calls := store.listCalls

	moved, _ := store.GetTransaction(ctx, "t1")
	moved.Date = core.NewDate(2026, 7, 5)
	if err := svc.UpdateTransaction(ctx, moved); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	if _, err := svc.reports.MonthlyReport(ctx, 2026, 7); err != nil {
		t.Fatal(err)
	}
	if store.listCalls == calls {
		t.Error("old period report should have been invalidated by the date change")
	}
}

func TestCloseMonthRequiresBroker(t *testing.T) {
	store := newFakeStore()
	svc := newTestLedger(store, nil)

	if err := svc.CloseMonth(context.Background(), 2026, 8); !errors.Is(err, ErrBrokerRequired) {
		t.Errorf("CloseMonth without a broker: got %v, want ErrBrokerRequired", err)
	}

	publisher := &fakePublisher{}
	svc = newTestLedger(store, publisher)
	if err := svc.CloseMonth(context.Background(), 2026, 8); err != nil {
		t.Fatalf("CloseMonth: %v", err)
	}
	if len(publisher.monthClosed) != 1 {
		t.Errorf("got %d month-closed messages, want 1", len(publisher.monthClosed))
	}
}

func TestPersonWritesPurgeReportCache(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestLedger(store, &fakePublisher{})
	ctx := context.Background()

	if _, err := svc.reports.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatal(err)
	}
	calls := store.listCalls

	if _, err := svc.CreatePerson(ctx, core.Person{Name: "Carla", Income: 3000}); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	if _, err := svc.reports.MonthlyReport(ctx, 2026, 8); err != nil {
		t.Fatal(err)
	}
	if store.listCalls == calls {
		t.Error("income change must invalidate cached reports")
	}
}
