package core

import (
	"fmt"
	"sort"
)

const (
	ScenarioCurrentMonth ExpenseScenario = "currentMonth"
	ScenarioMinimalist   ExpenseScenario = "minimalist"
	ScenarioAverage      ExpenseScenario = "average"
	ScenarioCustom       ExpenseScenario = "custom"
)

type (
	ExpenseScenario string

	// Participant is a person in a what-if scenario: an activity flag and
	// an income multiplier on top of their real income.
	Participant struct {
		Person           Person  `json:"person"`
		Active           bool    `json:"active"`
		IncomeMultiplier float64 `json:"incomeMultiplier"`
	}

	// SimulatedExpense is one editable line item of the scenario.
	SimulatedExpense struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		CategoryID  string  `json:"categoryId,omitempty"`
		Recurring   bool    `json:"recurring"`
		Included    bool    `json:"included"`
		Manual      bool    `json:"manual"`
	}

	// SimulationInput carries everything a projection depends on. The
	// engine is a pure function of this struct.
	SimulationInput struct {
		Participants     []Participant      `json:"participants"`
		Categories       []Category         `json:"categories"`
		Transactions     []Transaction      `json:"transactions"`
		EmergencyFund    float64            `json:"emergencyFund"`
		Scenario         ExpenseScenario    `json:"scenario"`
		IncludeOverrides map[string]bool    `json:"includeOverrides,omitempty"`
		ManualExpenses   []SimulatedExpense `json:"manualExpenses,omitempty"`
		CustomTotal      float64            `json:"customTotal,omitempty"`
		TargetFund       float64            `json:"targetFund,omitempty"`
		Months           int                `json:"months,omitempty"`
	}

	// ChartDataPoint is one month of the projected series, with the
	// non-simulated baseline alongside for comparison.
	ChartDataPoint struct {
		Month            int     `json:"month"`
		SimulatedBalance float64 `json:"simulatedBalance"`
		BaselineBalance  float64 `json:"baselineBalance"`
		SimulatedNet     float64 `json:"simulatedNet"`
		BaselineNet      float64 `json:"baselineNet"`
	}

	SimulationSummary struct {
		SimulatedIncome   float64  `json:"simulatedIncome"`
		SimulatedExpenses float64  `json:"totalSimulatedExpenses"`
		MonthlyNet        float64  `json:"monthlyNet"`
		BaselineIncome    float64  `json:"baselineIncome"`
		BaselineExpenses  float64  `json:"baselineExpenses"`
		BaselineNet       float64  `json:"baselineNet"`
		FinalBalance      float64  `json:"finalBalance"`
		DepletionMonth    *int     `json:"depletionMonth,omitempty"`
		MonthsToTarget    *int     `json:"monthsToTarget,omitempty"`
		Alerts            []string `json:"alerts"`
	}

	ProjectionResult struct {
		Points   []ChartDataPoint   `json:"points"`
		Expenses []SimulatedExpense `json:"editableExpenses"`
		Summary  SimulationSummary  `json:"summary"`
	}
)

// ValidSimulationExpenses filters the expenses a scenario is built from:
// categorized and not excluded from shared accounting.
func ValidSimulationExpenses(transactions []Transaction) []Transaction {
	var out []Transaction
	for _, t := range transactions {
		if t.IsExpense() && t.CategoryID != "" && !t.ExcludeFromSplit {
			out = append(out, t)
		}
	}
	return out
}

// CurrentMonthExpenses sums the valid expenses of the most recent month
// present in the transaction set.
func CurrentMonthExpenses(transactions []Transaction) float64 {
	valid := ValidSimulationExpenses(transactions)
	current := latestPeriod(valid)
	var total float64
	for _, t := range valid {
		if periodKey(t.Date) == current {
			total += t.Amount
		}
	}
	return total
}

// AverageExpenses is the mean of the monthly valid-expense totals across the
// months present in the transaction set. A single-month set degenerates to
// CurrentMonthExpenses.
func AverageExpenses(transactions []Transaction) float64 {
	totals := monthlyTotals(ValidSimulationExpenses(transactions))
	if len(totals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range totals {
		sum += v
	}
	return sum / float64(len(totals))
}

// BuildEditableExpenses constructs the scenario's line items. The minimalist
// scenario starts with recurring items toggled out; current-month and
// average start with everything in. Caller overrides flip individual items,
// and manual one-off items are appended.
func BuildEditableExpenses(in SimulationInput) []SimulatedExpense {
	var items []SimulatedExpense
	switch in.Scenario {
	case ScenarioAverage:
		items = averageCategoryItems(in.Categories, in.Transactions)
	default:
		items = currentMonthItems(in.Transactions, in.Scenario)
	}

	for _, m := range in.ManualExpenses {
		m.Manual = true
		m.Included = true
		items = append(items, m)
	}
	for i := range items {
		if included, ok := in.IncludeOverrides[items[i].ID]; ok {
			items[i].Included = included
		}
	}
	return items
}

func currentMonthItems(transactions []Transaction, scenario ExpenseScenario) []SimulatedExpense {
	valid := ValidSimulationExpenses(transactions)
	current := latestPeriod(valid)
	var items []SimulatedExpense
	for _, t := range valid {
		if periodKey(t.Date) != current {
			continue
		}
		included := true
		if scenario == ScenarioMinimalist && t.IsRecurring {
			included = false
		}
		items = append(items, SimulatedExpense{
			ID:          t.ID,
			Description: t.Description,
			Amount:      t.Amount,
			CategoryID:  t.CategoryID,
			Recurring:   t.IsRecurring,
			Included:    included,
		})
	}
	return items
}

// averageCategoryItems synthesizes one line per category carrying that
// category's average monthly spend across the months in the set.
func averageCategoryItems(categories []Category, transactions []Transaction) []SimulatedExpense {
	valid := ValidSimulationExpenses(transactions)
	months := make(map[string]bool)
	byCategory := make(map[string]float64)
	for _, t := range valid {
		months[periodKey(t.Date)] = true
		byCategory[t.CategoryID] += t.Amount
	}
	if len(months) == 0 {
		return nil
	}

	var items []SimulatedExpense
	for _, c := range categories {
		total, ok := byCategory[c.ID]
		if !ok {
			continue
		}
		items = append(items, SimulatedExpense{
			ID:          "avg-" + c.ID,
			Description: c.Name,
			Amount:      total / float64(len(months)),
			CategoryID:  c.ID,
			Recurring:   true,
			Included:    true,
		})
	}
	return items
}

// TotalSimulatedExpenses sums the included line items, or takes the user's
// override verbatim for the custom scenario.
func TotalSimulatedExpenses(in SimulationInput, items []SimulatedExpense) float64 {
	if in.Scenario == ScenarioCustom {
		return in.CustomTotal
	}
	var total float64
	for _, item := range items {
		if item.Included {
			total += item.Amount
		}
	}
	return total
}

// SimulatedIncome sums active participants' income scaled by their
// multiplier. Inactive participants contribute nothing.
func SimulatedIncome(participants []Participant) float64 {
	var total float64
	for _, p := range participants {
		if !p.Active {
			continue
		}
		total += p.Person.Income * p.IncomeMultiplier
	}
	return total
}

// Project compounds the emergency fund month by month under the scenario,
// alongside a non-simulated baseline, and derives the summary alerts.
func Project(in SimulationInput) ProjectionResult {
	months := in.Months
	if months <= 0 {
		months = DefaultProjectionMonths
	}

	items := BuildEditableExpenses(in)
	simExpenses := TotalSimulatedExpenses(in, items)
	simIncome := SimulatedIncome(in.Participants)

	var baselineIncome float64
	for _, p := range in.Participants {
		baselineIncome += p.Person.Income
	}
	baselineExpenses := CurrentMonthExpenses(in.Transactions)

	simNet := simIncome - simExpenses
	baseNet := baselineIncome - baselineExpenses

	points := make([]ChartDataPoint, 0, months)
	simBalance, baseBalance := in.EmergencyFund, in.EmergencyFund
	var depletion, toTarget *int
	for n := 1; n <= months; n++ {
		simBalance += simNet
		baseBalance += baseNet
		points = append(points, ChartDataPoint{
			Month:            n,
			SimulatedBalance: simBalance,
			BaselineBalance:  baseBalance,
			SimulatedNet:     simNet,
			BaselineNet:      baseNet,
		})
		if depletion == nil && simBalance < 0 {
			m := n
			depletion = &m
		}
		if toTarget == nil && in.TargetFund > 0 && simBalance >= in.TargetFund {
			m := n
			toTarget = &m
		}
	}

	summary := SimulationSummary{
		SimulatedIncome:   simIncome,
		SimulatedExpenses: simExpenses,
		MonthlyNet:        simNet,
		BaselineIncome:    baselineIncome,
		BaselineExpenses:  baselineExpenses,
		BaselineNet:       baseNet,
		FinalBalance:      simBalance,
		DepletionMonth:    depletion,
		MonthsToTarget:    toTarget,
		Alerts:            simulationAlerts(simNet, depletion, toTarget, in.TargetFund, months),
	}

	return ProjectionResult{Points: points, Expenses: items, Summary: summary}
}

// simulationAlerts encodes the documented thresholds: a negative monthly net
// always alerts, as does fund depletion within the horizon and an unreached
// target fund.
func simulationAlerts(net float64, depletion, toTarget *int, targetFund float64, months int) []string {
	var alerts []string
	if net < 0 {
		alerts = append(alerts, fmt.Sprintf("Despesas simuladas superam a renda: déficit mensal de R$ %.2f", -net))
	}
	if depletion != nil {
		alerts = append(alerts, fmt.Sprintf("Reserva de emergência esgota no mês %d", *depletion))
	}
	if targetFund > 0 && toTarget == nil {
		alerts = append(alerts, fmt.Sprintf("Meta de reserva de R$ %.2f não alcançada em %d meses", targetFund, months))
	}
	return alerts
}

func periodKey(d Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
}

func latestPeriod(transactions []Transaction) string {
	var keys []string
	seen := make(map[string]bool)
	for _, t := range transactions {
		k := periodKey(t.Date)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return keys[len(keys)-1]
}

func monthlyTotals(transactions []Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, t := range transactions {
		totals[periodKey(t.Date)] += t.Amount
	}
	return totals
}
