package core

// IncomeBreakdown partitions the income transactions of a period into
// additions and deductions against the household baseline.
type IncomeBreakdown struct {
	TotalIncrement float64 `json:"totalIncomeIncrement"`
	TotalDecrement float64 `json:"totalIncomeDecrement"`
	Net            float64 `json:"netIncome"`
}

// TotalIncome sums the monthly baseline income of all people.
func TotalIncome(people []Person) float64 {
	var total float64
	for _, p := range people {
		total += p.Income
	}
	return total
}

// ComputeIncomeBreakdown partitions income transactions by IsIncrement.
// Every income transaction contributes to exactly one of the two totals.
func ComputeIncomeBreakdown(transactions []Transaction) IncomeBreakdown {
	var b IncomeBreakdown
	for _, t := range transactions {
		if !t.IsIncome() {
			continue
		}
		if t.IsIncrement {
			b.TotalIncrement += t.Amount
		} else {
			b.TotalDecrement += t.Amount
		}
	}
	b.Net = b.TotalIncrement - b.TotalDecrement
	return b
}

// ExpenseTransactions filters the expense entries of a transaction set.
// Inclusion filters beyond the type (forecast, recurring) are the caller's
// responsibility.
func ExpenseTransactions(transactions []Transaction) []Transaction {
	var out []Transaction
	for _, t := range transactions {
		if t.IsExpense() {
			out = append(out, t)
		}
	}
	return out
}

// TotalExpenses sums the amounts of the expense entries among the given
// transactions.
func TotalExpenses(transactions []Transaction) float64 {
	var total float64
	for _, t := range transactions {
		if t.IsExpense() {
			total += t.Amount
		}
	}
	return total
}

// EffectiveIncome is the household baseline income adjusted by the net of
// the period's income transactions. It is the denominator for every
// percent-of-income figure.
func EffectiveIncome(people []Person, transactions []Transaction) float64 {
	return TotalIncome(people) + ComputeIncomeBreakdown(transactions).Net
}
