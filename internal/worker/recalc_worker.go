package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ahorrapp/internal/amqp"
	"ahorrapp/internal/core"
	"ahorrapp/internal/export"
	"ahorrapp/internal/storage"

	"github.com/shopspring/decimal"
)

// RecalcWorker keeps wallet running totals in sync with their
// transactions and mirrors transactions to the spreadsheet backup.
type RecalcWorker struct {
	storage  *storage.SQLiteRepository
	appender export.RowAppender
	remover  export.RowRemover
}

func NewRecalcWorker(storage *storage.SQLiteRepository, appender export.RowAppender, remover export.RowRemover) *RecalcWorker {
	return &RecalcWorker{
		storage:  storage,
		appender: appender,
		remover:  remover,
	}
}

// HandleMessage processes a single queue message.
func (w *RecalcWorker) HandleMessage(ctx context.Context, msg *amqp.Message) error {
	switch msg.Kind {
	case amqp.KindWalletRecalc:
		return w.recalcWallet(ctx, msg.WalletID)
	case amqp.KindTransactionExport:
		return w.exportTransaction(ctx, msg.TransactionID, msg.Deleted)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

func (w *RecalcWorker) recalcWallet(ctx context.Context, walletID string) error {
	slog.InfoContext(ctx, "Recalculating wallet totals", "wallet_id", walletID)

	if _, err := w.storage.GetWallet(ctx, walletID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between publish and consume, nothing to do.
			slog.WarnContext(ctx, "Wallet gone, skipping recalc", "wallet_id", walletID)
			return nil
		}
		return fmt.Errorf("get wallet %s: %w", walletID, err)
	}

	txs, err := w.storage.ListTransactionsByWallet(ctx, walletID)
	if err != nil {
		return fmt.Errorf("list transactions of wallet %s: %w", walletID, err)
	}

	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expenses = expenses.Add(t.Amount)
		}
	}

	if err := w.storage.UpdateWalletTotals(ctx, walletID, income.Sub(expenses), income, expenses); err != nil {
		return fmt.Errorf("update wallet %s totals: %w", walletID, err)
	}
	return nil
}

func (w *RecalcWorker) exportTransaction(ctx context.Context, transactionID string, deleted bool) error {
	if deleted {
		if w.remover == nil {
			slog.WarnContext(ctx, "No row remover configured, skipping export delete", "transaction_id", transactionID)
			return nil
		}
		if err := w.remover.Remove(ctx, transactionID); err != nil {
			return fmt.Errorf("remove exported row %s: %w", transactionID, err)
		}
		return nil
	}

	if w.appender == nil {
		slog.WarnContext(ctx, "No row appender configured, skipping export", "transaction_id", transactionID)
		return nil
	}

	t, err := w.storage.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone, skipping export", "transaction_id", transactionID)
			return nil
		}
		return fmt.Errorf("get transaction %s: %w", transactionID, err)
	}

	ref, err := w.appender.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append exported row %s: %w", transactionID, err)
	}

	slog.InfoContext(ctx, "Exported transaction", "transaction_id", transactionID, "row", ref)
	return nil
}

// ReconcileAll recomputes every wallet's totals. Run periodically to
// repair wallets whose recalc message was lost.
func (w *RecalcWorker) ReconcileAll(ctx context.Context) error {
	start := time.Now()

	ids, err := w.storage.ListWalletIDs(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}

	var failed int
	for _, id := range ids {
		if err := w.recalcWallet(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Reconcile failed for wallet", "wallet_id", id, "error", err)
			failed++
		}
	}

	slog.InfoContext(ctx, "Reconcile pass finished",
		"wallets", len(ids),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds())

	if failed > 0 {
		return fmt.Errorf("reconcile: %d of %d wallets failed", failed, len(ids))
	}
	return nil
}
