package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/cache"
	"contas/internal/core"
)

// BatchHealthLimit caps how many periods one health request may ask for.
const BatchHealthLimit = 10

// Report is the full computed view of one period.
type Report struct {
	Year            int                       `json:"year"`
	Month           int                       `json:"month"`
	TotalIncome     float64                   `json:"totalIncome"`
	IncomeBreakdown core.IncomeBreakdown      `json:"incomeBreakdown"`
	TotalExpenses   float64                   `json:"totalExpenses"`
	EffectiveIncome float64                   `json:"effectiveIncome"`
	Categories      []core.CategorySummaryRow `json:"categories"`
	Settlement      core.Settlement           `json:"settlement"`
	Outliers        []core.Transaction        `json:"outliers"`
	Health          core.HealthScore          `json:"health"`
}

// Period identifies one reporting month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (p Period) String() string { return fmt.Sprintf("%04d-%02d", p.Year, p.Month) }

// PeriodHealth pairs a period with its health score for batch responses.
type PeriodHealth struct {
	Period Period           `json:"period"`
	Health core.HealthScore `json:"health"`
}

// ReportService computes per-period reports, memoizing them in an LRU cache
// keyed by year-month.
type ReportService struct {
	store DataStore
	cache cache.Cache[Report]
	now   func() time.Time
}

func NewReportService(store DataStore, reportCache cache.Cache[Report]) *ReportService {
	return &ReportService{
		store: store,
		cache: reportCache,
		now:   time.Now,
	}
}

// MonthlyReport assembles (or returns the cached) report for one period.
func (s *ReportService) MonthlyReport(ctx context.Context, year, month int) (Report, error) {
	key := Period{Year: year, Month: month}.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	report, err := s.compute(ctx, year, month)
	if err != nil {
		return Report{}, err
	}

	s.cache.Set(key, report)
	return report, nil
}

func (s *ReportService) compute(ctx context.Context, year, month int) (Report, error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load people: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load categories: %w", err)
	}
	transactions, err := s.store.ListTransactions(ctx, year, month)
	if err != nil {
		return Report{}, fmt.Errorf("load transactions: %w", err)
	}
	statRows, err := s.store.GetStatistics(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load statistics: %w", err)
	}
	stats := core.NewStatisticsIndex(statRows)

	effectiveIncome := core.EffectiveIncome(people, transactions)
	outliers := core.DetectOutliers(transactions, stats, core.OutlierStdDevFactor)

	health := core.ComputeHealthScore(core.HealthInput{
		People:       people,
		Categories:   categories,
		Transactions: transactions,
		OutlierCount: len(outliers),
		DayOfMonth:   s.effectiveDay(year, month),
	})

	return Report{
		Year:            year,
		Month:           month,
		TotalIncome:     core.TotalIncome(people),
		IncomeBreakdown: core.ComputeIncomeBreakdown(transactions),
		TotalExpenses:   core.TotalExpenses(transactions),
		EffectiveIncome: effectiveIncome,
		Categories:      core.SummarizeCategories(categories, transactions, effectiveIncome),
		Settlement:      core.ComputeSettlement(people, categories, transactions),
		Outliers:        outliers,
		Health:          health,
	}, nil
}

// effectiveDay is the elapsed day the health score prorates against: today
// for the current month, a full month for past periods, day one for future
// ones.
func (s *ReportService) effectiveDay(year, month int) int {
	now := s.now()
	switch {
	case year == now.Year() && month == int(now.Month()):
		return now.Day()
	case year < now.Year() || (year == now.Year() && month < int(now.Month())):
		return core.DaysInFullMonth
	default:
		return 1
	}
}

// BatchHealth computes health scores for up to BatchHealthLimit periods
// concurrently. Results keep the request order.
func (s *ReportService) BatchHealth(ctx context.Context, periods []Period) ([]PeriodHealth, error) {
	if len(periods) == 0 {
		return nil, nil
	}
	if len(periods) > BatchHealthLimit {
		return nil, fmt.Errorf("too many periods: %d (limit %d)", len(periods), BatchHealthLimit)
	}

	// Each goroutine writes its own slot, so no locking is needed.
	results := make([]PeriodHealth, len(periods))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range periods {
		g.Go(func() error {
			report, err := s.MonthlyReport(gctx, p.Year, p.Month)
			if err != nil {
				return fmt.Errorf("health for %s: %w", p, err)
			}
			results[i] = PeriodHealth{Period: p, Health: report.Health}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Invalidate drops the cached report of one period.
func (s *ReportService) Invalidate(year, month int) {
	s.cache.Delete(Period{Year: year, Month: month}.String())
}

// PurgeCache drops every cached report. Called when a write affects all
// periods, such as a person or category change.
func (s *ReportService) PurgeCache() {
	s.cache.Purge()
}
