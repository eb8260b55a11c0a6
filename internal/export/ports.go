// Package export mirrors transactions to an external spreadsheet as an
// off-device backup. The worker drives it; the API never blocks on it.
package export

import (
	"context"

	"ahorrapp/internal/core"
)

// Ports for outbound adapters.
type (
	// RowAppender appends one transaction row to the backup sheet and
	// returns an adapter-specific row reference.
	RowAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// RowRemover removes the row for a transaction id.
	RowRemover interface {
		Remove(ctx context.Context, transactionID string) error
	}
)

// Columns is the fixed column layout of an exported row.
var Columns = []string{"ID", "Date", "Type", "Amount", "Category", "Description", "Wallet"}

// RowValues flattens a transaction into the export column layout. The
// category column carries the resolved display label, matching what the app
// shows.
func RowValues(t core.Transaction) []any {
	date := ""
	if !t.Date.IsZero() {
		date = t.Date.Format("2006-01-02")
	}
	return []any{
		t.ID,
		date,
		string(t.Type),
		t.Amount.String(),
		core.ResolveCategory(t.Category).Label,
		t.Description,
		t.WalletID,
	}
}
