package query

import (
	"strings"

	"ahorrapp/internal/core"
)

// Search returns the transactions whose resolved category label, description
// or decimal amount string contains q. Label and description matching is
// case-insensitive; the amount string is matched against the raw query, so
// "45" finds 45.99. An empty query returns the input unchanged without
// scanning.
func Search(txs []core.Transaction, q string) []core.Transaction {
	if q == "" {
		return txs
	}

	lower := strings.ToLower(q)
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if matches(t, q, lower) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t core.Transaction, raw, lower string) bool {
	label := core.ResolveCategory(t.Category).Label
	return strings.Contains(strings.ToLower(label), lower) ||
		strings.Contains(strings.ToLower(t.Description), lower) ||
		strings.Contains(t.Amount.String(), raw)
}
