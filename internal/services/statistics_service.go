package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"contas/internal/core"
)

// StatisticsService recomputes the per-category mean and standard deviation
// of expense amounts over a trailing window of months. The results feed the
// outlier detector.
type StatisticsService struct {
	store        DataStore
	reports      *ReportService
	windowMonths int
	now          func() time.Time
}

func NewStatisticsService(store DataStore, reports *ReportService, windowMonths int) *StatisticsService {
	return &StatisticsService{
		store:        store,
		reports:      reports,
		windowMonths: windowMonths,
		now:          time.Now,
	}
}

// Recompute rebuilds the statistics table from the trailing window and drops
// every cached report, since outlier results may have shifted for any period.
func (s *StatisticsService) Recompute(ctx context.Context) ([]core.CategoryStatistics, error) {
	now := s.now()
	from := core.NewDate(now.Year(), int(now.Month()), 1).AddDate(0, -(s.windowMonths - 1), 0)

	transactions, err := s.store.ListTransactionsSince(ctx, core.Date{Time: from})
	if err != nil {
		return nil, fmt.Errorf("load window transactions: %w", err)
	}

	stats := ComputeCategoryStatistics(transactions)
	if err := s.store.ReplaceStatistics(ctx, stats); err != nil {
		return nil, fmt.Errorf("store statistics: %w", err)
	}

	if s.reports != nil {
		s.reports.PurgeCache()
	}

	slog.InfoContext(ctx, "Category statistics recomputed",
		"categories", len(stats),
		"window_months", s.windowMonths,
		"from", from.Format("2006-01-02"))
	return stats, nil
}

// ComputeCategoryStatistics derives mean and population standard deviation of
// expense amounts per category. Forecast entries are projections, not real
// spending, and are left out.
func ComputeCategoryStatistics(transactions []core.Transaction) []core.CategoryStatistics {
	amounts := make(map[string][]float64)
	for _, t := range transactions {
		if !t.IsExpense() || t.CategoryID == "" || t.IsForecast {
			continue
		}
		amounts[t.CategoryID] = append(amounts[t.CategoryID], t.Amount)
	}

	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	stats := make([]core.CategoryStatistics, 0, len(ids))
	for _, id := range ids {
		mean, stdDev := meanStdDev(amounts[id])
		stats = append(stats, core.CategoryStatistics{
			CategoryID:        id,
			Mean:              mean,
			StandardDeviation: stdDev,
		})
	}
	return stats
}

func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
