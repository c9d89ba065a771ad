package core

// StatisticsIndex looks up historical statistics by category ID.
type StatisticsIndex map[string]CategoryStatistics

// NewStatisticsIndex builds an index from statistic rows. Later rows for
// the same category win.
func NewStatisticsIndex(rows []CategoryStatistics) StatisticsIndex {
	idx := make(StatisticsIndex, len(rows))
	for _, r := range rows {
		idx[r.CategoryID] = r
	}
	return idx
}

// OutlierThreshold is the amount above which a transaction in this category
// counts as an outlier.
func OutlierThreshold(s CategoryStatistics, stdDevFactor float64) float64 {
	return s.Mean + stdDevFactor*s.StandardDeviation
}

// DetectOutliers flags the non-recurring, split-participating expenses whose
// amount strictly exceeds the historical threshold for their category.
// Transactions of categories without statistics are never flagged.
func DetectOutliers(transactions []Transaction, stats StatisticsIndex, stdDevFactor float64) []Transaction {
	var out []Transaction
	for _, t := range transactions {
		if !t.IsExpense() || t.IsRecurring || t.ExcludeFromSplit || t.CategoryID == "" {
			continue
		}
		s, ok := stats[t.CategoryID]
		if !ok {
			continue
		}
		if t.Amount > OutlierThreshold(s, stdDevFactor) {
			out = append(out, t)
		}
	}
	return out
}

// CountOutliers is DetectOutliers reduced to the count consumed by the
// health score.
func CountOutliers(transactions []Transaction, stats StatisticsIndex, stdDevFactor float64) int {
	return len(DetectOutliers(transactions, stats, stdDevFactor))
}
