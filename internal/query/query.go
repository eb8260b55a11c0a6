package query

import (
	"time"

	"ahorrapp/internal/core"
)

// Options is the state the presentation layer holds for the transaction
// list: active filter, search term and sort order.
type Options struct {
	Filter FilterKey
	Search string
	Sort   SortKey
}

// DefaultOptions matches the view the app opens with.
func DefaultOptions() Options {
	return Options{Filter: FilterAll, Sort: SortDateDesc}
}

// Run computes the display view for a transaction snapshot:
// filter, then search, then sort. The input is never mutated and every call
// with the same inputs yields the same output.
func Run(txs []core.Transaction, opts Options, now time.Time) []core.Transaction {
	if len(txs) == 0 {
		return []core.Transaction{}
	}
	filtered := Filter(txs, opts.Filter, now)
	filtered = Search(filtered, opts.Search)
	return Sort(filtered, opts.Sort)
}
