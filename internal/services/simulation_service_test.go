package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"contas/internal/core"
)

func newTestSimulationService(store *fakeStore) *SimulationService {
	svc := NewSimulationService(store, store)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestRunEphemeralSimulation(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestSimulationService(store)

	result, err := svc.Run(context.Background(), core.SavedSimulation{
		Scenario:      core.ScenarioCurrentMonth,
		EmergencyFund: 10000,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Points) != core.DefaultProjectionMonths {
		t.Errorf("got %d points, want default horizon %d", len(result.Points), core.DefaultProjectionMonths)
	}
	// Income 10000, current-month expenses 4500: fund grows by 5500/month.
	if !almostEqual(result.Summary.MonthlyNet, 5500) {
		t.Errorf("MonthlyNet = %v, want 5500", result.Summary.MonthlyNet)
	}
	if !almostEqual(result.Points[0].SimulatedBalance, 15500) {
		t.Errorf("first balance = %v, want 15500", result.Points[0].SimulatedBalance)
	}
}

func TestRunDefaultsToCurrentMonthScenario(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestSimulationService(store)

	result, err := svc.Run(context.Background(), core.SavedSimulation{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !almostEqual(result.Summary.SimulatedExpenses, 4500) {
		t.Errorf("SimulatedExpenses = %v, want current-month total 4500", result.Summary.SimulatedExpenses)
	}
}

func TestRunRejectsUnknownScenario(t *testing.T) {
	store := newFakeStore()
	svc := newTestSimulationService(store)

	_, err := svc.Run(context.Background(), core.SavedSimulation{Scenario: "bogus"})
	if !errors.Is(err, core.ErrInvalidScenario) {
		t.Errorf("Run = %v, want ErrInvalidScenario", err)
	}
}

func TestRunSavedUsesLiveData(t *testing.T) {
	store := newFakeStore()
	seedAugust(store)
	svc := newTestSimulationService(store)
	ctx := context.Background()

	saved, err := svc.Save(ctx, core.SavedSimulation{
		Name:     "Cenário base",
		Scenario: core.ScenarioCurrentMonth,
		ParticipantSettings: map[string]core.ParticipantSetting{
			"p2": {Active: false},
		},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, err := svc.RunSaved(ctx, saved.ID)
	if err != nil {
		t.Fatalf("RunSaved: %v", err)
	}
	// Only Ana earns: 6000 against 4500 expenses.
	if !almostEqual(first.Summary.SimulatedIncome, 6000) {
		t.Errorf("SimulatedIncome = %v, want 6000 (p2 inactive)", first.Summary.SimulatedIncome)
	}

	// The household data changes; the same saved scenario follows it.
	store.transactions = append(store.transactions, core.Transaction{
		ID: "t3", Description: "Conserto", Amount: 500, CategoryID: "c1",
		PaidBy: "p1", Type: core.TypeExpense, Date: core.NewDate(2026, 8, 20),
	})
	second, err := svc.RunSaved(ctx, saved.ID)
	if err != nil {
		t.Fatalf("RunSaved (after write): %v", err)
	}
	if !almostEqual(second.Summary.SimulatedExpenses, first.Summary.SimulatedExpenses+500) {
		t.Errorf("saved run should see new data: %v then %v", first.Summary.SimulatedExpenses, second.Summary.SimulatedExpenses)
	}
}

func TestSaveValidates(t *testing.T) {
	store := newFakeStore()
	svc := newTestSimulationService(store)

	_, err := svc.Save(context.Background(), core.SavedSimulation{Scenario: core.ScenarioAverage})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("Save without name = %v, want ErrEmptyName", err)
	}

	_, err = svc.Save(context.Background(), core.SavedSimulation{Name: "x", Scenario: "bogus"})
	if !errors.Is(err, core.ErrInvalidScenario) {
		t.Errorf("Save with bad scenario = %v, want ErrInvalidScenario", err)
	}
}
