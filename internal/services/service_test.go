package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
)

// fakeStore is an in-memory DataStore/LedgerStore/SimulationStore for
// service tests.
type fakeStore struct {
	people       []core.Person
	categories   []core.Category
	transactions []core.Transaction
	statistics   []core.CategoryStatistics
	simulations  map[string]core.SavedSimulation

	listCalls int
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{simulations: make(map[string]core.SavedSimulation)}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) ListPeople(ctx context.Context) ([]core.Person, error) {
	return f.people, nil
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	f.listCalls++
	var out []core.Transaction
	for _, t := range f.transactions {
		if t.Date.Year() == year && t.Date.Month() == month {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTransactionsSince(ctx context.Context, from core.Date) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.transactions {
		if !t.Date.Before(from.Time) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetStatistics(ctx context.Context) ([]core.CategoryStatistics, error) {
	return f.statistics, nil
}

func (f *fakeStore) ReplaceStatistics(ctx context.Context, stats []core.CategoryStatistics) error {
	f.statistics = stats
	return nil
}

func (f *fakeStore) CreatePerson(ctx context.Context, p core.Person) (core.Person, error) {
	if p.ID == "" {
		p.ID = f.id()
	}
	f.people = append(f.people, p)
	return p, nil
}

func (f *fakeStore) GetPerson(ctx context.Context, id string) (core.Person, error) {
	for _, p := range f.people {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Person{}, fmt.Errorf("person %s: not found", id)
}

func (f *fakeStore) UpdatePerson(ctx context.Context, p core.Person) error {
	for i := range f.people {
		if f.people[i].ID == p.ID {
			f.people[i] = p
			return nil
		}
	}
	return fmt.Errorf("person %s: not found", p.ID)
}

func (f *fakeStore) DeletePerson(ctx context.Context, id, replacementID string) error {
	for i := range f.people {
		if f.people[i].ID == id {
			f.people = append(f.people[:i], f.people[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("person %s: not found", id)
}

func (f *fakeStore) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = f.id()
	}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeStore) GetCategory(ctx context.Context, id string) (core.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("category %s: not found", id)
}

func (f *fakeStore) UpdateCategory(ctx context.Context, c core.Category) error {
	for i := range f.categories {
		if f.categories[i].ID == c.ID {
			f.categories[i] = c
			return nil
		}
	}
	return fmt.Errorf("category %s: not found", c.ID)
}

func (f *fakeStore) DeleteCategory(ctx context.Context, id string) error {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %s: not found", id)
}

func (f *fakeStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = f.id()
	}
	f.transactions = append(f.transactions, t)
	return t, nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	for _, t := range f.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: not found", id)
}

func (f *fakeStore) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	for i := range f.transactions {
		if f.transactions[i].ID == t.ID {
			f.transactions[i] = t
			return nil
		}
	}
	return fmt.Errorf("transaction %s: not found", t.ID)
}

func (f *fakeStore) DeleteTransaction(ctx context.Context, id string) error {
	for i := range f.transactions {
		if f.transactions[i].ID == id {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: not found", id)
}

func (f *fakeStore) SaveSimulation(ctx context.Context, sim core.SavedSimulation) (core.SavedSimulation, error) {
	if sim.ID == "" {
		sim.ID = f.id()
	}
	sim.CreatedAt = time.Now()
	sim.UpdatedAt = sim.CreatedAt
	f.simulations[sim.ID] = sim
	return sim, nil
}

func (f *fakeStore) GetSimulation(ctx context.Context, id string) (core.SavedSimulation, error) {
	sim, ok := f.simulations[id]
	if !ok {
		return core.SavedSimulation{}, fmt.Errorf("simulation %s: not found", id)
	}
	return sim, nil
}

func (f *fakeStore) ListSimulations(ctx context.Context) ([]core.SavedSimulation, error) {
	var out []core.SavedSimulation
	for _, sim := range f.simulations {
		out = append(out, sim)
	}
	return out, nil
}

func (f *fakeStore) UpdateSimulation(ctx context.Context, sim core.SavedSimulation) error {
	if _, ok := f.simulations[sim.ID]; !ok {
		return fmt.Errorf("simulation %s: not found", sim.ID)
	}
	f.simulations[sim.ID] = sim
	return nil
}

func (f *fakeStore) DeleteSimulation(ctx context.Context, id string) error {
	delete(f.simulations, id)
	return nil
}

// fakePublisher records published period messages.
type fakePublisher struct {
	statsRecalc []Period
	monthClosed []Period
	err         error
}

func (p *fakePublisher) PublishStatsRecalc(ctx context.Context, year, month int) error {
	if p.err != nil {
		return p.err
	}
	p.statsRecalc = append(p.statsRecalc, Period{Year: year, Month: month})
	return nil
}

func (p *fakePublisher) PublishMonthClosed(ctx context.Context, year, month int) error {
	if p.err != nil {
		return p.err
	}
	p.monthClosed = append(p.monthClosed, Period{Year: year, Month: month})
	return nil
}

func newTestReportService(store *fakeStore) *ReportService {
	svc := NewReportService(store, cache.NewLRU[Report](16, time.Minute))
	svc.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}
