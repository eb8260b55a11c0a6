package query

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ahorrapp/internal/core"
)

var budget = decimal.NewFromInt(2000)

func TestSummarizeBasic(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Income, "100", refNow),
		tx("b", core.Expense, "40", refNow),
	}

	s := Summarize(txs, budget, refNow)

	if !s.TotalIncome.Equal(decimal.NewFromInt(100)) {
		t.Errorf("TotalIncome = %s, want 100", s.TotalIncome)
	}
	if !s.TotalExpenses.Equal(decimal.NewFromInt(40)) {
		t.Errorf("TotalExpenses = %s, want 40", s.TotalExpenses)
	}
	if !s.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Balance = %s, want 60", s.Balance)
	}
	if s.SavingsRate != 60 {
		t.Errorf("SavingsRate = %v, want 60", s.SavingsRate)
	}
	// Both transactions fall in the current month, so 40/2000 = 2%.
	if s.BudgetUsed != 2 {
		t.Errorf("BudgetUsed = %v, want 2", s.BudgetUsed)
	}
	if s.TotalTransactions != 2 {
		t.Errorf("TotalTransactions = %d, want 2", s.TotalTransactions)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, budget, refNow)

	if !s.Balance.IsZero() || !s.TotalIncome.IsZero() || !s.TotalExpenses.IsZero() {
		t.Errorf("empty input produced non-zero totals: %+v", s)
	}
	if s.SavingsRate != 0 || s.BudgetUsed != 0 || s.TotalTransactions != 0 {
		t.Errorf("empty input produced non-zero stats: %+v", s)
	}
}

func TestSummarizeAllIncome(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Income, "300", refNow),
		tx("b", core.Income, "200", refNow),
	}

	s := Summarize(txs, budget, refNow)

	if !s.Balance.Equal(s.TotalIncome) {
		t.Errorf("balance %s != total income %s", s.Balance, s.TotalIncome)
	}
	if s.SavingsRate != 100 {
		t.Errorf("SavingsRate = %v, want 100", s.SavingsRate)
	}
	if s.BudgetUsed != 0 {
		t.Errorf("BudgetUsed = %v, want 0 with no expenses", s.BudgetUsed)
	}
}

func TestSummarizeAllExpense(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Expense, "300", refNow),
	}

	s := Summarize(txs, budget, refNow)

	if !s.Balance.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("Balance = %s, want -300", s.Balance)
	}
	// Zero income must not divide: savings rate degrades to 0.
	if s.SavingsRate != 0 {
		t.Errorf("SavingsRate = %v, want 0", s.SavingsRate)
	}
}

func TestSummarizeBudgetClamp(t *testing.T) {
	txs := []core.Transaction{
		tx("a", core.Expense, "999999", refNow),
	}

	s := Summarize(txs, budget, refNow)

	if s.BudgetUsed != 100 {
		t.Errorf("BudgetUsed = %v, want clamp at 100", s.BudgetUsed)
	}
}

func TestSummarizeZeroBudgetLimit(t *testing.T) {
	txs := []core.Transaction{tx("a", core.Expense, "50", refNow)}

	s := Summarize(txs, decimal.Zero, refNow)

	if s.BudgetUsed != 0 {
		t.Errorf("BudgetUsed = %v, want 0 with no budget limit", s.BudgetUsed)
	}
}

func TestSummarizeMonthlyWindow(t *testing.T) {
	txs := []core.Transaction{
		tx("thismonth", core.Expense, "100", refNow),
		tx("lastmonth", core.Expense, "500", refNow.AddDate(0, -1, 0)),
		tx("lastyear", core.Expense, "900", refNow.AddDate(-1, 0, 0)),
		tx("nodate", core.Expense, "7", time.Time{}),
	}

	s := Summarize(txs, budget, refNow)

	if !s.MonthlyExpenses.Equal(decimal.NewFromInt(100)) {
		t.Errorf("MonthlyExpenses = %s, want 100", s.MonthlyExpenses)
	}
	// All expenses still count toward the lifetime total.
	if !s.TotalExpenses.Equal(decimal.NewFromInt(1507)) {
		t.Errorf("TotalExpenses = %s, want 1507", s.TotalExpenses)
	}
	if s.TotalTransactions != 4 {
		t.Errorf("TotalTransactions = %d, want 4", s.TotalTransactions)
	}
}

func TestSummarizePercentagesFinite(t *testing.T) {
	cases := [][]core.Transaction{
		nil,
		{tx("a", core.Expense, "10", refNow)},
		{tx("a", core.Income, "0", refNow)},
		{tx("a", core.Income, "0.000001", refNow), tx("b", core.Expense, "100000", refNow)},
	}

	for i, txs := range cases {
		s := Summarize(txs, budget, refNow)
		if math.IsNaN(s.SavingsRate) || math.IsInf(s.SavingsRate, 0) {
			t.Errorf("case %d: SavingsRate not finite: %v", i, s.SavingsRate)
		}
		if math.IsNaN(s.BudgetUsed) || math.IsInf(s.BudgetUsed, 0) {
			t.Errorf("case %d: BudgetUsed not finite: %v", i, s.BudgetUsed)
		}
	}
}
