package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ahorrapp/internal/amqp"
	"ahorrapp/internal/cache"
	"ahorrapp/internal/core"
	"ahorrapp/internal/query"
	"ahorrapp/internal/storage"

	"github.com/shopspring/decimal"
)

// Publisher sends async work to the worker queue.
type Publisher interface {
	Publish(ctx context.Context, msg *amqp.Message) error
}

// TransactionService orchestrates transaction writes across SQLite and
// AMQP, and serves filtered views and summaries of a user's history.
type TransactionService struct {
	storage     *storage.SQLiteRepository
	publisher   Publisher
	summaries   *cache.SummaryCache
	budgetLimit decimal.Decimal
}

func NewTransactionService(storage *storage.SQLiteRepository, publisher Publisher, summaries *cache.SummaryCache, budgetLimit decimal.Decimal) *TransactionService {
	return &TransactionService{
		storage:     storage,
		publisher:   publisher,
		summaries:   summaries,
		budgetLimit: budgetLimit,
	}
}

// CreateTransaction validates and saves a transaction, then schedules the
// wallet recalculation and spreadsheet export asynchronously.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if _, err := s.storage.GetWallet(ctx, t.WalletID); err != nil {
		return "", fmt.Errorf("wallet %s: %w", t.WalletID, err)
	}

	// Save to SQLite first, publish after. A lost message is repaired by
	// the worker's periodic reconcile pass.
	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.invalidateSummaries(t.UID)
	s.publish(ctx, amqp.NewWalletRecalcMessage(t.WalletID))
	s.publish(ctx, amqp.NewTransactionExportMessage(id, false))

	return id, nil
}

// UpdateTransaction validates and overwrites a transaction. When the
// transaction moved between wallets, both wallets get recalculated.
func (s *TransactionService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	prev, err := s.storage.GetTransaction(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", t.ID, err)
	}

	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}

	s.invalidateSummaries(t.UID)
	s.publish(ctx, amqp.NewWalletRecalcMessage(t.WalletID))
	if prev.WalletID != t.WalletID {
		s.publish(ctx, amqp.NewWalletRecalcMessage(prev.WalletID))
	}
	s.publish(ctx, amqp.NewTransactionExportMessage(t.ID, false))

	return nil
}

// DeleteTransaction removes a transaction and schedules the wallet
// recalculation and the removal of its spreadsheet row.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", id, err)
	}

	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.invalidateSummaries(t.UID)
	s.publish(ctx, amqp.NewWalletRecalcMessage(t.WalletID))
	s.publish(ctx, amqp.NewTransactionExportMessage(id, true))

	return nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

// ListTransactions returns the user's history filtered, searched and
// sorted according to opts.
func (s *TransactionService) ListTransactions(ctx context.Context, uid string, opts query.Options, now time.Time) ([]core.Transaction, error) {
	txs, err := s.storage.ListTransactionsByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", uid, err)
	}
	return query.Run(txs, opts, now), nil
}

// ListWalletTransactions is ListTransactions scoped to a single wallet.
func (s *TransactionService) ListWalletTransactions(ctx context.Context, walletID string, opts query.Options, now time.Time) ([]core.Transaction, error) {
	txs, err := s.storage.ListTransactionsByWallet(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions of wallet %s: %w", walletID, err)
	}
	return query.Run(txs, opts, now), nil
}

// Summary aggregates the user's filtered history. Results are memoized
// per view until a write invalidates them.
func (s *TransactionService) Summary(ctx context.Context, uid string, opts query.Options, now time.Time) (query.Summary, error) {
	if s.summaries != nil {
		if cached, ok := s.summaries.Get(uid, opts); ok {
			return cached, nil
		}
	}

	txs, err := s.storage.ListTransactionsByUser(ctx, uid)
	if err != nil {
		return query.Summary{}, fmt.Errorf("list transactions for %s: %w", uid, err)
	}

	visible := query.Search(query.Filter(txs, opts.Filter, now), opts.Search)
	summary := query.Summarize(visible, s.budgetLimit, now)

	if s.summaries != nil {
		s.summaries.Set(uid, opts, summary)
	}
	return summary, nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.Message) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping message", "kind", msg.Kind)
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		// The write already succeeded, so log and move on.
		slog.ErrorContext(ctx, "Failed to publish message", "kind", msg.Kind, "error", err)
	}
}

func (s *TransactionService) invalidateSummaries(uid string) {
	if s.summaries != nil {
		s.summaries.Invalidate(uid)
	}
}
