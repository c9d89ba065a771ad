package core

import (
	"fmt"
	"math"
)

const (
	FactorFreedom     FactorID = "financialFreedom"
	FactorOnBudget    FactorID = "categoriesOnBudget"
	FactorOutliers    FactorID = "outliers"
	FactorSettlement  FactorID = "settlement"
	FactorFreeBalance FactorID = "freeBalance"
)

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusWarning  HealthStatus = "warning"
	HealthStatusCritical HealthStatus = "critical"
)

// FreeBalanceFullScoreRatio is the free-balance-to-income ratio that earns a
// full free-balance factor score. Keeping 20% of income free scores 100.
const FreeBalanceFullScoreRatio = 0.20

type (
	FactorID     string
	HealthStatus string

	// HealthFactor is one scored sub-factor of the composite.
	HealthFactor struct {
		ID     FactorID `json:"id"`
		Label  string   `json:"label"`
		Score  float64  `json:"score"`
		Weight float64  `json:"weight"`
		Detail string   `json:"detail"`
	}

	// HealthInput is the period snapshot the score is computed from.
	// DayOfMonth is the effective elapsed day: today's day for the current
	// month, DaysInFullMonth for a past month, 1 for a future month.
	HealthInput struct {
		People       []Person
		Categories   []Category
		Transactions []Transaction
		OutlierCount int
		DayOfMonth   int
	}

	HealthScore struct {
		Score       int            `json:"score"`
		Status      HealthStatus   `json:"status"`
		Factors     []HealthFactor `json:"factors"`
		Reason      string         `json:"reason"`
		GoalReached bool           `json:"goalReached"`
	}
)

var factorLabels = map[FactorID]string{
	FactorFreedom:     "Liberdade Financeira",
	FactorOnBudget:    "Categorias no orçamento",
	FactorOutliers:    "Gastos fora do padrão",
	FactorSettlement:  "Acerto entre membros",
	FactorFreeBalance: "Saldo livre",
}

// ComputeHealthScore derives the weighted composite health score for one
// period. The score is always in [0,100]; status is a monotonic function of
// the score; the reason names the worst-performing factor.
func ComputeHealthScore(in HealthInput) HealthScore {
	day := in.DayOfMonth
	if day < 1 {
		day = 1
	}
	if day > DaysInFullMonth {
		day = DaysInFullMonth
	}
	elapsed := float64(day) / float64(DaysInFullMonth)

	effectiveIncome := EffectiveIncome(in.People, in.Transactions)
	totalExpenses := TotalExpenses(in.Transactions)
	rows := SummarizeCategories(in.Categories, in.Transactions, effectiveIncome)
	settlement := ComputeSettlement(in.People, in.Categories, in.Transactions)

	freedom, goalReached := freedomFactor(in.Categories, in.Transactions, effectiveIncome, elapsed)
	factors := []HealthFactor{
		freedom,
		onBudgetFactor(rows),
		outlierFactor(in.OutlierCount),
		settlementFactor(settlement),
		freeBalanceFactor(effectiveIncome, totalExpenses),
	}

	freedomWeight, otherWeight := FreedomWeightBaseline, OtherWeightBaseline
	if goalReached {
		freedomWeight, otherWeight = FreedomWeightGoalReached, OtherWeightGoalReached
	}
	var composite float64
	for i := range factors {
		if factors[i].ID == FactorFreedom {
			factors[i].Weight = freedomWeight
		} else {
			factors[i].Weight = otherWeight
		}
		composite += factors[i].Score * factors[i].Weight
	}
	score := int(math.Round(clampScore(composite)))

	return HealthScore{
		Score:       score,
		Status:      statusForScore(score),
		Factors:     factors,
		Reason:      healthReason(factors, day),
		GoalReached: goalReached,
	}
}

func statusForScore(score int) HealthStatus {
	switch {
	case score >= HealthyScoreFloor:
		return HealthStatusHealthy
	case score >= WarningScoreFloor:
		return HealthStatusWarning
	default:
		return HealthStatusCritical
	}
}

// freedomFactor scores progress toward the financial-freedom goal category.
// Goal attainment (and the resulting reweighting) is judged against the full
// monthly target; the score itself is measured against the elapsed-day
// prorated target so a household on pace mid-month is not penalized.
func freedomFactor(categories []Category, transactions []Transaction, effectiveIncome, elapsed float64) (HealthFactor, bool) {
	goal, ok := findFreedomCategory(categories)
	f := HealthFactor{ID: FactorFreedom, Label: factorLabels[FactorFreedom]}
	if !ok {
		f.Score = 0
		f.Detail = "categoria de Liberdade Financeira não configurada"
		return f, false
	}

	var actual float64
	for _, t := range transactions {
		if t.IsExpense() && t.CategoryID == goal.ID {
			actual += t.Amount
		}
	}
	target := goal.TargetPercent / 100 * effectiveIncome

	var percentAchieved, paceAchieved float64
	if target > 0 {
		percentAchieved = actual / target * 100
		if elapsed > 0 {
			paceAchieved = actual / (target * elapsed) * 100
		}
	}
	f.Score = clampScore(paceAchieved)
	f.Detail = fmt.Sprintf("R$ %.2f de R$ %.2f (%.0f%%)", actual, target, percentAchieved)
	return f, percentAchieved >= 100
}

func findFreedomCategory(categories []Category) (Category, bool) {
	for _, c := range categories {
		if IsFreedomCategory(c.Name) {
			return c, true
		}
	}
	// Fall back to any goal category when the designated one is absent.
	for _, c := range categories {
		if c.IsGoal() {
			return c, true
		}
	}
	return Category{}, false
}

// onBudgetFactor is the share of ordinary categories at or under target.
// With no ordinary categories there is nothing to violate.
func onBudgetFactor(rows []CategorySummaryRow) HealthFactor {
	f := HealthFactor{ID: FactorOnBudget, Label: factorLabels[FactorOnBudget]}
	var total, onBudget int
	for _, r := range rows {
		if r.IsGoal {
			continue
		}
		total++
		if r.RealPercentOfIncome <= r.TargetPercent {
			onBudget++
		}
	}
	if total == 0 {
		f.Score = 100
		f.Detail = "nenhuma categoria de despesa configurada"
		return f
	}
	f.Score = float64(onBudget) / float64(total) * 100
	f.Detail = fmt.Sprintf("%d de %d categorias dentro do alvo", onBudget, total)
	return f
}

func outlierFactor(count int) HealthFactor {
	f := HealthFactor{ID: FactorOutliers, Label: factorLabels[FactorOutliers]}
	f.Score = clampScore(100 - float64(count)*OutlierPenaltyPerHit)
	f.Detail = fmt.Sprintf("%d gasto(s) fora do padrão histórico", count)
	return f
}

// settlementFactor is full when balances are within tolerance; otherwise it
// degrades with the imbalance magnitude relative to the shared total.
func settlementFactor(s Settlement) HealthFactor {
	f := HealthFactor{ID: FactorSettlement, Label: factorLabels[FactorSettlement]}
	if s.IsSettled || s.TotalExpenses <= 0 {
		f.Score = 100
		f.Detail = "divisão equilibrada"
		return f
	}
	var imbalance float64
	for _, share := range s.Shares {
		imbalance += math.Abs(share.Balance)
	}
	imbalance /= 2
	ratio := imbalance / s.TotalExpenses
	f.Score = clampScore(100 * (1 - ratio))
	f.Detail = fmt.Sprintf("desequilíbrio de R$ %.2f", imbalance)
	return f
}

func freeBalanceFactor(effectiveIncome, totalExpenses float64) HealthFactor {
	f := HealthFactor{ID: FactorFreeBalance, Label: factorLabels[FactorFreeBalance]}
	if effectiveIncome <= 0 {
		f.Score = 0
		f.Detail = "sem renda no período"
		return f
	}
	free := effectiveIncome - totalExpenses
	ratio := free / effectiveIncome
	f.Score = clampScore(ratio / FreeBalanceFullScoreRatio * 100)
	f.Detail = fmt.Sprintf("R$ %.2f livres (%.0f%% da renda)", free, ratio*100)
	return f
}

func healthReason(factors []HealthFactor, day int) string {
	worst := factors[0]
	for _, f := range factors[1:] {
		if f.Score < worst.Score {
			worst = f
		}
	}
	reason := fmt.Sprintf("Fator mais fraco: %s (%.0f/100) — %s", worst.Label, worst.Score, worst.Detail)
	if day > 1 && day < DaysInFullMonth {
		reason += fmt.Sprintf(". Mês em andamento (dia %d), metas proporcionais ao período.", day)
	}
	return reason
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
