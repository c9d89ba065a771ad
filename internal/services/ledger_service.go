package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// ErrBrokerRequired is returned by operations that only work with the async
// worker attached.
var ErrBrokerRequired = errors.New("operation requires the async worker (AMQP not configured)")

// LedgerStore is the CRUD surface the ledger service writes through.
// *storage.Repository satisfies it.
type LedgerStore interface {
	CreatePerson(ctx context.Context, p core.Person) (core.Person, error)
	GetPerson(ctx context.Context, id string) (core.Person, error)
	ListPeople(ctx context.Context) ([]core.Person, error)
	UpdatePerson(ctx context.Context, p core.Person) error
	DeletePerson(ctx context.Context, id, replacementID string) error

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// LedgerService fronts every write to the household data. It validates,
// persists, invalidates cached reports, and triggers the async statistics
// recompute. Without a broker the recompute runs inline.
type LedgerService struct {
	store     LedgerStore
	reports   *ReportService
	stats     *StatisticsService
	publisher Publisher
}

func NewLedgerService(store LedgerStore, reports *ReportService, stats *StatisticsService, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		reports:   reports,
		stats:     stats,
		publisher: publisher,
	}
}

func (s *LedgerService) CreatePerson(ctx context.Context, p core.Person) (core.Person, error) {
	if err := p.Validate(); err != nil {
		return core.Person{}, err
	}
	created, err := s.store.CreatePerson(ctx, p)
	if err != nil {
		return core.Person{}, err
	}
	s.reports.PurgeCache()
	return created, nil
}

func (s *LedgerService) GetPerson(ctx context.Context, id string) (core.Person, error) {
	return s.store.GetPerson(ctx, id)
}

func (s *LedgerService) ListPeople(ctx context.Context) ([]core.Person, error) {
	return s.store.ListPeople(ctx)
}

func (s *LedgerService) UpdatePerson(ctx context.Context, p core.Person) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdatePerson(ctx, p); err != nil {
		return err
	}
	s.reports.PurgeCache()
	return nil
}

// DeletePerson removes a person. Their transactions are reassigned to
// replacementID, or to the most frequent remaining payer when empty.
func (s *LedgerService) DeletePerson(ctx context.Context, id, replacementID string) error {
	if err := s.store.DeletePerson(ctx, id, replacementID); err != nil {
		return err
	}
	s.reports.PurgeCache()
	return nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.reports.PurgeCache()
	return created, nil
}

func (s *LedgerService) GetCategory(ctx context.Context, id string) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.reports.PurgeCache()
	return nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.reports.PurgeCache()
	return nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterTransactionWrite(ctx, created.Date.Year(), created.Date.Month())
	return created, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, year, month)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	// A date change moves the transaction between periods; both caches go.
	previous, err := s.store.GetTransaction(ctx, t.ID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}
	if previous.Date.String() != t.Date.String() {
		s.reports.Invalidate(previous.Date.Year(), previous.Date.Month())
	}
	s.afterTransactionWrite(ctx, t.Date.Year(), t.Date.Month())
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.afterTransactionWrite(ctx, t.Date.Year(), t.Date.Month())
	return nil
}

// CloseMonth marks a period as finished: its report export is triggered
// through the broker. The write path never blocks on the export itself.
func (s *LedgerService) CloseMonth(ctx context.Context, year, month int) error {
	if s.publisher == nil {
		return ErrBrokerRequired
	}
	if err := s.publisher.PublishMonthClosed(ctx, year, month); err != nil {
		return fmt.Errorf("publish month close: %w", err)
	}
	return nil
}

// afterTransactionWrite invalidates the period's cached report and triggers
// the statistics recompute. Publish failures are logged, never surfaced: the
// write already succeeded.
func (s *LedgerService) afterTransactionWrite(ctx context.Context, year, month int) {
	s.reports.Invalidate(year, month)

	if s.publisher != nil {
		if err := s.publisher.PublishStatsRecalc(ctx, year, month); err != nil {
			slog.ErrorContext(ctx, "Failed to publish stats recalc message",
				"year", year, "month", month, "error", err)
		}
		return
	}

	if s.stats != nil {
		if _, err := s.stats.Recompute(ctx); err != nil {
			slog.ErrorContext(ctx, "Inline statistics recompute failed", "error", err)
		}
	}
}
