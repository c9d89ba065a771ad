package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"contas/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPersonCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreatePerson(ctx, core.Person{Name: "Ana", Income: 6000})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := repo.GetPerson(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if got.Name != "Ana" || got.Income != 6000 {
		t.Errorf("got %+v, want Ana/6000", got)
	}

	got.Income = 6500
	if err := repo.UpdatePerson(ctx, got); err != nil {
		t.Fatalf("UpdatePerson: %v", err)
	}
	updated, _ := repo.GetPerson(ctx, created.ID)
	if updated.Income != 6500 {
		t.Errorf("income = %v after update, want 6500", updated.Income)
	}

	if _, err := repo.GetPerson(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPerson(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeletePersonReassignsTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ana, _ := repo.CreatePerson(ctx, core.Person{Name: "Ana", Income: 6000})
	bruno, _ := repo.CreatePerson(ctx, core.Person{Name: "Bruno", Income: 4000})
	cat, _ := repo.CreateCategory(ctx, core.Category{Name: "Mercado", TargetPercent: 20})

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		Description: "Compras",
		Amount:      250,
		CategoryID:  cat.ID,
		PaidBy:      ana.ID,
		Type:        core.TypeExpense,
		Date:        core.NewDate(2026, 8, 10),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := repo.DeletePerson(ctx, ana.ID, ""); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	got, err := repo.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.PaidBy != bruno.ID {
		t.Errorf("PaidBy = %s after delete, want reassigned to %s", got.PaidBy, bruno.ID)
	}

	// Bruno is now the only person with transactions; deleting him has
	// nobody left to inherit them.
	if err := repo.DeletePerson(ctx, bruno.ID, ""); !errors.Is(err, core.ErrNoReplacementPerson) {
		t.Errorf("DeletePerson(last payer) = %v, want ErrNoReplacementPerson", err)
	}
}

func TestListTransactionsByPeriod(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ana, _ := repo.CreatePerson(ctx, core.Person{Name: "Ana", Income: 6000})
	cat, _ := repo.CreateCategory(ctx, core.Category{Name: "Mercado", TargetPercent: 20})

	dates := []core.Date{
		core.NewDate(2026, 7, 31),
		core.NewDate(2026, 8, 1),
		core.NewDate(2026, 8, 31),
		core.NewDate(2026, 9, 1),
	}
	for i, d := range dates {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			Description: "Compras",
			Amount:      float64(100 + i),
			CategoryID:  cat.ID,
			PaidBy:      ana.ID,
			Type:        core.TypeExpense,
			Date:        d,
		})
		if err != nil {
			t.Fatalf("CreateTransaction(%s): %v", d, err)
		}
	}

	august, err := repo.ListTransactions(ctx, 2026, 8)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(august) != 2 {
		t.Fatalf("got %d transactions for 2026-08, want 2", len(august))
	}
	for _, tx := range august {
		if tx.Date.Year() != 2026 || tx.Date.Month() != 8 {
			t.Errorf("transaction dated %s leaked into the 2026-08 period", tx.Date)
		}
	}

	since, err := repo.ListTransactionsSince(ctx, core.NewDate(2026, 8, 1))
	if err != nil {
		t.Fatalf("ListTransactionsSince: %v", err)
	}
	if len(since) != 3 {
		t.Errorf("got %d transactions since 2026-08-01, want 3", len(since))
	}
}

func TestReplaceStatistics(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := []core.CategoryStatistics{
		{CategoryID: "c1", Mean: 100, StandardDeviation: 20},
		{CategoryID: "c2", Mean: 50, StandardDeviation: 5},
	}
	if err := repo.ReplaceStatistics(ctx, first); err != nil {
		t.Fatalf("ReplaceStatistics: %v", err)
	}

	second := []core.CategoryStatistics{{CategoryID: "c1", Mean: 110, StandardDeviation: 25}}
	if err := repo.ReplaceStatistics(ctx, second); err != nil {
		t.Fatalf("ReplaceStatistics (second): %v", err)
	}

	got, err := repo.GetStatistics(ctx)
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d statistics rows, want 1 (stale rows must be dropped)", len(got))
	}
	if got[0].CategoryID != "c1" || got[0].Mean != 110 {
		t.Errorf("got %+v, want recomputed c1", got[0])
	}
}

func TestSavedSimulationRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	sim := core.SavedSimulation{
		Name:     "Sem renda da Ana",
		Scenario: core.ScenarioMinimalist,
		ParticipantSettings: map[string]core.ParticipantSetting{
			"p1": {Active: false, IncomeMultiplier: 0},
		},
		IncludeOverrides: map[string]bool{"t1": true},
		ManualExpenses: []core.SimulatedExpense{
			{ID: "m1", Description: "Curso", Amount: 400, Included: true},
		},
		EmergencyFund: 12000,
		TargetFund:    20000,
		Months:        24,
	}

	saved, err := repo.SaveSimulation(ctx, sim)
	if err != nil {
		t.Fatalf("SaveSimulation: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatal("expected generated ID and timestamps")
	}

	got, err := repo.GetSimulation(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetSimulation: %v", err)
	}
	if got.Scenario != core.ScenarioMinimalist || got.EmergencyFund != 12000 || got.Months != 24 {
		t.Errorf("got %+v, want stored parameters back", got)
	}
	if s := got.ParticipantSettings["p1"]; s.Active || s.IncomeMultiplier != 0 {
		t.Errorf("participant setting = %+v, want inactive", s)
	}
	if len(got.ManualExpenses) != 1 || got.ManualExpenses[0].Amount != 400 {
		t.Errorf("manual expenses = %+v, want one of 400", got.ManualExpenses)
	}

	got.Name = "Renomeada"
	if err := repo.UpdateSimulation(ctx, got); err != nil {
		t.Fatalf("UpdateSimulation: %v", err)
	}

	sims, err := repo.ListSimulations(ctx)
	if err != nil {
		t.Fatalf("ListSimulations: %v", err)
	}
	if len(sims) != 1 || sims[0].Name != "Renomeada" {
		t.Errorf("list = %+v, want the renamed simulation", sims)
	}

	if err := repo.DeleteSimulation(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteSimulation: %v", err)
	}
	if _, err := repo.GetSimulation(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSimulation after delete = %v, want ErrNotFound", err)
	}
}
