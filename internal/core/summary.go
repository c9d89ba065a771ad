package core

// Budget statuses use the household's own vocabulary: Dentro (on track),
// Estourou (over budget), Faltando (under a savings goal).
const (
	StatusOnTrack    BudgetStatus = "Dentro"
	StatusOverBudget BudgetStatus = "Estourou"
	StatusUnderGoal  BudgetStatus = "Faltando"
)

type (
	BudgetStatus string

	// CategorySummaryRow compares one category's spend against its target
	// share of effective income.
	CategorySummaryRow struct {
		Category            Category     `json:"category"`
		TotalSpent          float64      `json:"totalSpent"`
		RealPercentOfIncome float64      `json:"realPercentOfIncome"`
		TargetPercent       float64      `json:"targetPercent"`
		Status              BudgetStatus `json:"status"`
		IsGoal              bool         `json:"isGoal"`
	}
)

// SummarizeCategories builds one row per category, ordered as the input.
// With zero or negative effective income every percent-of-income is 0,
// never NaN. Equality with the target is always on track; for goal
// categories only falling short of the target is a deficiency.
func SummarizeCategories(categories []Category, transactions []Transaction, effectiveIncome float64) []CategorySummaryRow {
	spentByCategory := make(map[string]float64)
	for _, t := range transactions {
		if t.IsExpense() && t.CategoryID != "" {
			spentByCategory[t.CategoryID] += t.Amount
		}
	}

	rows := make([]CategorySummaryRow, 0, len(categories))
	for _, c := range categories {
		spent := spentByCategory[c.ID]
		realPercent := 0.0
		if effectiveIncome > 0 {
			realPercent = spent / effectiveIncome * 100
		}
		rows = append(rows, CategorySummaryRow{
			Category:            c,
			TotalSpent:          spent,
			RealPercentOfIncome: realPercent,
			TargetPercent:       c.TargetPercent,
			Status:              budgetStatus(c, realPercent),
			IsGoal:              c.IsGoal(),
		})
	}
	return rows
}

func budgetStatus(c Category, realPercent float64) BudgetStatus {
	if c.IsGoal() {
		if realPercent < c.TargetPercent {
			return StatusUnderGoal
		}
		return StatusOnTrack
	}
	if realPercent > c.TargetPercent {
		return StatusOverBudget
	}
	return StatusOnTrack
}
