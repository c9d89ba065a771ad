// Package services orchestrates the calculation engine over the SQLite
// repository: report assembly with caching, statistics recomputation, and
// simulation runs.
package services

import (
	"context"

	"contas/internal/core"
)

// DataStore is the read/write surface the services need from storage.
// *storage.Repository satisfies it.
type DataStore interface {
	ListPeople(ctx context.Context) ([]core.Person, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error)
	ListTransactionsSince(ctx context.Context, from core.Date) ([]core.Transaction, error)
	GetStatistics(ctx context.Context) ([]core.CategoryStatistics, error)
	ReplaceStatistics(ctx context.Context, stats []core.CategoryStatistics) error
}

// SimulationStore persists saved simulation parameter sets.
type SimulationStore interface {
	SaveSimulation(ctx context.Context, sim core.SavedSimulation) (core.SavedSimulation, error)
	GetSimulation(ctx context.Context, id string) (core.SavedSimulation, error)
	ListSimulations(ctx context.Context) ([]core.SavedSimulation, error)
	UpdateSimulation(ctx context.Context, sim core.SavedSimulation) error
	DeleteSimulation(ctx context.Context, id string) error
}

// Publisher emits the async processing triggers. *amqp.Client satisfies it;
// a nil Publisher means the deployment runs without a broker.
type Publisher interface {
	PublishStatsRecalc(ctx context.Context, year, month int) error
	PublishMonthClosed(ctx context.Context, year, month int) error
}
