package services

import (
	"context"
	"fmt"
	"time"

	"contas/internal/core"
)

// simulationHistoryMonths is how far back the scenario builders look for
// expense history. The average scenario needs several months to be useful.
const simulationHistoryMonths = 12

// SimulationService runs projections against the live household data.
// Saved simulations store parameters only, so the same saved scenario can
// produce different numbers as data changes.
type SimulationService struct {
	data  DataStore
	saved SimulationStore
	now   func() time.Time
}

func NewSimulationService(data DataStore, saved SimulationStore) *SimulationService {
	return &SimulationService{
		data:  data,
		saved: saved,
		now:   time.Now,
	}
}

// Run executes an ephemeral simulation with the given parameters.
func (s *SimulationService) Run(ctx context.Context, params core.SavedSimulation) (core.ProjectionResult, error) {
	if params.Scenario == "" {
		params.Scenario = core.ScenarioCurrentMonth
	}
	switch params.Scenario {
	case core.ScenarioCurrentMonth, core.ScenarioMinimalist, core.ScenarioAverage, core.ScenarioCustom:
	default:
		return core.ProjectionResult{}, core.ErrInvalidScenario
	}

	people, err := s.data.ListPeople(ctx)
	if err != nil {
		return core.ProjectionResult{}, fmt.Errorf("load people: %w", err)
	}
	categories, err := s.data.ListCategories(ctx)
	if err != nil {
		return core.ProjectionResult{}, fmt.Errorf("load categories: %w", err)
	}

	now := s.now()
	from := core.NewDate(now.Year(), int(now.Month()), 1).AddDate(0, -(simulationHistoryMonths - 1), 0)
	transactions, err := s.data.ListTransactionsSince(ctx, core.Date{Time: from})
	if err != nil {
		return core.ProjectionResult{}, fmt.Errorf("load transaction history: %w", err)
	}

	return core.Project(params.Input(people, categories, transactions)), nil
}

// RunSaved re-runs a stored scenario against the current data.
func (s *SimulationService) RunSaved(ctx context.Context, id string) (core.ProjectionResult, error) {
	sim, err := s.saved.GetSimulation(ctx, id)
	if err != nil {
		return core.ProjectionResult{}, err
	}
	return s.Run(ctx, sim)
}

func (s *SimulationService) Save(ctx context.Context, sim core.SavedSimulation) (core.SavedSimulation, error) {
	if err := sim.Validate(); err != nil {
		return core.SavedSimulation{}, err
	}
	return s.saved.SaveSimulation(ctx, sim)
}

func (s *SimulationService) Get(ctx context.Context, id string) (core.SavedSimulation, error) {
	return s.saved.GetSimulation(ctx, id)
}

func (s *SimulationService) List(ctx context.Context) ([]core.SavedSimulation, error) {
	return s.saved.ListSimulations(ctx)
}

func (s *SimulationService) Update(ctx context.Context, sim core.SavedSimulation) error {
	if err := sim.Validate(); err != nil {
		return err
	}
	return s.saved.UpdateSimulation(ctx, sim)
}

func (s *SimulationService) Delete(ctx context.Context, id string) error {
	return s.saved.DeleteSimulation(ctx, id)
}
