package core

import (
	"fmt"
	"math"
)

type (
	// PersonShare is one person's position in the fair split: their share
	// of shared expenses proportional to adjusted income, what they
	// actually paid, and the resulting balance. Positive balance means the
	// person is a creditor.
	PersonShare struct {
		Person          Person  `json:"person"`
		AdjustedIncome  float64 `json:"adjustedIncome"`
		SharePercent    float64 `json:"sharePercent"`
		FairShareAmount float64 `json:"fairShareAmount"`
		PaidAmount      float64 `json:"paidAmount"`
		Balance         float64 `json:"balance"`
	}

	// Transfer is one suggested debtor-to-creditor payment.
	Transfer struct {
		FromID      string  `json:"fromId"`
		FromName    string  `json:"fromName"`
		ToID        string  `json:"toId"`
		ToName      string  `json:"toName"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}

	// Settlement is the full fair-split view for one period.
	Settlement struct {
		Shares        []PersonShare `json:"shares"`
		Transfers     []Transfer    `json:"transfers"`
		TotalExpenses float64       `json:"totalExpenses"`
		IsSettled     bool          `json:"isSettled"`
	}
)

// SplitEligibleExpenses filters the expenses that participate in the fair
// split: categorized, not in a goal category, and not individually excluded.
func SplitEligibleExpenses(categories []Category, transactions []Transaction) []Transaction {
	goalIDs := make(map[string]bool)
	for _, c := range categories {
		if c.IsGoal() {
			goalIDs[c.ID] = true
		}
	}

	var out []Transaction
	for _, t := range transactions {
		if !t.IsExpense() || t.CategoryID == "" {
			continue
		}
		if t.ExcludeFromSplit || goalIDs[t.CategoryID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AdjustedIncome is a person's baseline income plus the net of the income
// transactions they are attributed with (paid by them).
func AdjustedIncome(p Person, transactions []Transaction) float64 {
	income := p.Income
	for _, t := range transactions {
		if !t.IsIncome() || t.PaidBy != p.ID {
			continue
		}
		if t.IsIncrement {
			income += t.Amount
		} else {
			income -= t.Amount
		}
	}
	return income
}

// ComputeSettlement derives the proportional fair split and the suggested
// transfers for a period. Share percentages partition the shared total, so
// balances always sum to zero (conservation). With no split-eligible
// expenses the view is empty and settled.
func ComputeSettlement(people []Person, categories []Category, transactions []Transaction) Settlement {
	eligible := SplitEligibleExpenses(categories, transactions)
	total := TotalExpenses(eligible)

	shares := make([]PersonShare, 0, len(people))
	var incomeSum float64
	for _, p := range people {
		adjusted := AdjustedIncome(p, transactions)
		incomeSum += adjusted
		shares = append(shares, PersonShare{Person: p, AdjustedIncome: adjusted})
	}

	paidBy := make(map[string]float64)
	for _, t := range eligible {
		paidBy[t.PaidBy] += t.Amount
	}

	settled := true
	for i := range shares {
		s := &shares[i]
		if incomeSum > 0 {
			s.SharePercent = s.AdjustedIncome / incomeSum
		}
		s.FairShareAmount = s.SharePercent * total
		s.PaidAmount = paidBy[s.Person.ID]
		s.Balance = s.PaidAmount - s.FairShareAmount
		if math.Abs(s.Balance) > SettlementSettledEpsilon {
			settled = false
		}
	}

	return Settlement{
		Shares:        shares,
		Transfers:     settlementTransfers(shares),
		TotalExpenses: total,
		IsSettled:     settled,
	}
}

// settlementTransfers pairs every debtor with every creditor, splitting each
// debt across creditors in proportion to their surplus. This is a display
// narrative, deliberately not a minimal-transfer-count netting algorithm.
func settlementTransfers(shares []PersonShare) []Transfer {
	var debtors, creditors []PersonShare
	var creditSum float64
	for _, s := range shares {
		switch {
		case s.Balance < -SettlementTransferFloor:
			debtors = append(debtors, s)
		case s.Balance > SettlementTransferFloor:
			creditors = append(creditors, s)
			creditSum += s.Balance
		}
	}
	if creditSum <= 0 {
		return nil
	}

	var transfers []Transfer
	for _, d := range debtors {
		debt := -d.Balance
		for _, c := range creditors {
			amount := debt * (c.Balance / creditSum)
			if amount < SettlementTransferFloor {
				continue
			}
			transfers = append(transfers, Transfer{
				FromID:      d.Person.ID,
				FromName:    d.Person.Name,
				ToID:        c.Person.ID,
				ToName:      c.Person.Name,
				Amount:      amount,
				Description: fmt.Sprintf("%s transfere R$ %.2f para %s", d.Person.Name, amount, c.Person.Name),
			})
		}
	}
	return transfers
}
