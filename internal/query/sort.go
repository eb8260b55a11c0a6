package query

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ahorrapp/internal/core"
)

type SortKey string

const (
	SortDateDesc   SortKey = "date-desc"
	SortDateAsc    SortKey = "date-asc"
	SortAmountDesc SortKey = "amount-desc"
	SortAmountAsc  SortKey = "amount-asc"
	SortCategory   SortKey = "category"
)

// ParseSortKey maps a raw parameter to a sort key, defaulting to date-desc,
// the order the app opens with.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortDateAsc, SortAmountDesc, SortAmountAsc, SortCategory:
		return SortKey(s)
	default:
		return SortDateDesc
	}
}

// Sort returns a new slice ordered by key. Sorting is stable: ties keep
// their original relative order. Category ordering compares display labels
// with Spanish collation (labels are accented). An unrecognized key returns
// a copy in the original order.
func Sort(txs []core.Transaction, key SortKey) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)

	switch key {
	case SortDateDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	case SortDateAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	case SortAmountDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	case SortAmountAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.LessThan(out[j].Amount) })
	case SortCategory:
		// Collators carry internal buffers, so build one per call rather
		// than sharing across goroutines.
		c := collate.New(language.Spanish)
		sort.SliceStable(out, func(i, j int) bool {
			li := core.ResolveCategory(out[i].Category).Label
			lj := core.ResolveCategory(out[j].Category).Label
			return c.CompareString(li, lj) < 0
		})
	}
	return out
}
