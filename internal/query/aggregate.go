package query

import (
	"time"

	"github.com/shopspring/decimal"

	"ahorrapp/internal/core"
)

// Summary holds the statistics derived from a full transaction set. It is
// recomputed on demand and never persisted.
type Summary struct {
	Balance           decimal.Decimal `json:"balance"`
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	MonthlyExpenses   decimal.Decimal `json:"monthlyExpenses"`
	SavingsRate       float64         `json:"savingsRate"`
	BudgetUsed        float64         `json:"budgetUsed"`
	TotalTransactions int             `json:"totalTransactions"`
}

// Summarize reduces txs into a Summary. Monthly expenses cover the calendar
// month of now; budgetLimit is the configured monthly ceiling. Percentages
// are always finite: a zero income yields a 0 savings rate and a
// non-positive budget limit yields 0 budget usage. BudgetUsed is clamped
// to 100.
func Summarize(txs []core.Transaction, budgetLimit decimal.Decimal, now time.Time) Summary {
	var (
		totalIncome     = decimal.Zero
		totalExpenses   = decimal.Zero
		monthlyExpenses = decimal.Zero
	)

	for _, t := range txs {
		switch t.Type {
		case core.Income:
			totalIncome = totalIncome.Add(t.Amount)
		case core.Expense:
			totalExpenses = totalExpenses.Add(t.Amount)
			if inMonth(t.Date, now) {
				monthlyExpenses = monthlyExpenses.Add(t.Amount)
			}
		}
	}

	s := Summary{
		Balance:           totalIncome.Sub(totalExpenses),
		TotalIncome:       totalIncome,
		TotalExpenses:     totalExpenses,
		MonthlyExpenses:   monthlyExpenses,
		TotalTransactions: len(txs),
	}

	if totalIncome.IsPositive() {
		rate, _ := totalIncome.Sub(totalExpenses).
			Div(totalIncome).
			Mul(decimal.NewFromInt(100)).
			Float64()
		s.SavingsRate = rate
	}

	if budgetLimit.IsPositive() {
		used, _ := monthlyExpenses.
			Div(budgetLimit).
			Mul(decimal.NewFromInt(100)).
			Float64()
		if used > 100 {
			used = 100
		}
		s.BudgetUsed = used
	}

	return s
}

func inMonth(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	d := date.In(now.Location())
	return d.Year() == now.Year() && d.Month() == now.Month()
}
