// Package query implements the pure transaction view pipeline: predicate
// filtering, free-text search, ordering and summary aggregation. Every
// function is total and side-effect free; input slices are never mutated and
// the reference time is always an explicit parameter so results are
// deterministic under test.
package query

import (
	"time"

	"ahorrapp/internal/core"
)

type FilterKey string

const (
	FilterAll     FilterKey = "all"
	FilterIncome  FilterKey = "income"
	FilterExpense FilterKey = "expense"
	FilterToday   FilterKey = "today"
	FilterWeek    FilterKey = "week"
	FilterMonth   FilterKey = "month"
)

// ParseFilterKey maps a raw parameter to a filter key. Unknown values fall
// back to "all" so a bad parameter degrades to the unfiltered view.
func ParseFilterKey(s string) FilterKey {
	switch FilterKey(s) {
	case FilterIncome, FilterExpense, FilterToday, FilterWeek, FilterMonth:
		return FilterKey(s)
	default:
		return FilterAll
	}
}

// Filter returns the subsequence of txs matching key, preserving input
// order. Time windows are computed from now in now's location; all window
// boundaries are inclusive on the lower side. Transactions with a zero date
// match no time-window key.
func Filter(txs []core.Transaction, key FilterKey, now time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday())) // week begins on Sunday
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, t := range txs {
		switch key {
		case FilterIncome:
			if t.Type != core.Income {
				continue
			}
		case FilterExpense:
			if t.Type != core.Expense {
				continue
			}
		case FilterToday:
			if t.Date.IsZero() || !sameDay(t.Date, dayStart) {
				continue
			}
		case FilterWeek:
			if t.Date.IsZero() || t.Date.Before(weekStart) {
				continue
			}
		case FilterMonth:
			if t.Date.IsZero() || t.Date.Before(monthStart) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
