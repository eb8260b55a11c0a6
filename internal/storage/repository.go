package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"ahorrapp/internal/core"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const dateFormat = time.RFC3339Nano

// SQLiteRepository persists users, wallets and transactions. Amounts are
// stored as decimal strings to avoid float drift; dates as RFC3339 text,
// with the empty string standing in for a missing date.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- transactions ---

// CreateTransaction stores a transaction, assigning an id when none is set,
// and returns the stored id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, uid, wallet_id, type, amount, category, date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UID, t.WalletID, string(t.Type), t.Amount.String(), t.Category,
		formatDate(t.Date), t.Description, time.Now().UTC().Format(dateFormat))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"wallet_id", t.WalletID,
		"type", t.Type,
		"amount", t.Amount)

	return t.ID, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, uid, wallet_id, type, amount, category, date, description
		FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET wallet_id = ?, type = ?, amount = ?, category = ?, date = ?, description = ?
		WHERE id = ?`,
		t.WalletID, string(t.Type), t.Amount.String(), t.Category,
		formatDate(t.Date), t.Description, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// ListTransactionsByUser returns the user's transaction snapshot, newest
// insert first so a fresh record shows up at the top of the default view.
func (r *SQLiteRepository) ListTransactionsByUser(ctx context.Context, uid string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, wallet_id, type, amount, category, date, description
		FROM transactions WHERE uid = ? ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, fmt.Errorf("list transactions by user: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *SQLiteRepository) ListTransactionsByWallet(ctx context.Context, walletID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, wallet_id, type, amount, category, date, description
		FROM transactions WHERE wallet_id = ? ORDER BY created_at DESC`, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by wallet: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *SQLiteRepository) DeleteTransactionsByWallet(ctx context.Context, walletID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE wallet_id = ?`, walletID); err != nil {
		return fmt.Errorf("delete transactions by wallet: %w", err)
	}
	return nil
}

// --- wallets ---

func (r *SQLiteRepository) CreateWallet(ctx context.Context, w core.Wallet) (string, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (id, uid, name, image, amount, total_income, total_expenses, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UID, w.Name, w.Image,
		w.Amount.String(), w.TotalIncome.String(), w.TotalExpenses.String(),
		w.Created.UTC().Format(dateFormat))
	if err != nil {
		return "", fmt.Errorf("insert wallet: %w", err)
	}

	slog.InfoContext(ctx, "Wallet saved", "id", w.ID, "uid", w.UID, "name", w.Name)
	return w.ID, nil
}

func (r *SQLiteRepository) GetWallet(ctx context.Context, id string) (core.Wallet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, uid, name, image, amount, total_income, total_expenses, created_at
		FROM wallets WHERE id = ?`, id)
	return scanWallet(row)
}

// UpdateWallet updates mutable wallet fields; running totals go through
// UpdateWalletTotals instead.
func (r *SQLiteRepository) UpdateWallet(ctx context.Context, w core.Wallet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE wallets SET name = ?, image = ? WHERE id = ?`,
		w.Name, w.Image, w.ID)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	return requireRow(res)
}

// UpdateWalletTotals persists recomputed running totals for a wallet.
func (r *SQLiteRepository) UpdateWalletTotals(ctx context.Context, id string, amount, totalIncome, totalExpenses decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE wallets SET amount = ?, total_income = ?, total_expenses = ? WHERE id = ?`,
		amount.String(), totalIncome.String(), totalExpenses.String(), id)
	if err != nil {
		return fmt.Errorf("update wallet totals: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteWallet(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return requireRow(res)
}

// ListWalletsByUser returns the user's wallets, most recently created first
// (the order the wallet screen shows them in).
func (r *SQLiteRepository) ListWalletsByUser(ctx context.Context, uid string) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, name, image, amount, total_income, total_expenses, created_at
		FROM wallets WHERE uid = ? ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, fmt.Errorf("list wallets by user: %w", err)
	}
	defer rows.Close()

	var wallets []core.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// ListWalletIDs returns every wallet id, for the reconcile pass.
func (r *SQLiteRepository) ListWalletIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM wallets`)
	if err != nil {
		return nil, fmt.Errorf("list wallet ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wallet id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- users ---

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	var u core.User
	row := r.db.QueryRowContext(ctx, `SELECT id, name, email, image FROM users WHERE id = ?`, id)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// UpsertUser creates or replaces a user profile.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, u core.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, image, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email, image = excluded.image`,
		u.ID, u.Name, u.Email, u.Image, time.Now().UTC().Format(dateFormat))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// --- scanning helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ       string
		amount    string
		dateValue string
	)
	err := row.Scan(&t.ID, &t.UID, &t.WalletID, &typ, &amount, &t.Category, &dateValue, &t.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	t.Type = core.TransactionType(typ)
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	t.Date = parseDate(dateValue)
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func scanWallet(row scanner) (core.Wallet, error) {
	var (
		w                              core.Wallet
		amount, income, expenses, made string
	)
	err := row.Scan(&w.ID, &w.UID, &w.Name, &w.Image, &amount, &income, &expenses, &made)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Wallet{}, ErrNotFound
		}
		return core.Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}

	if w.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Wallet{}, fmt.Errorf("parse wallet amount %q: %w", amount, err)
	}
	if w.TotalIncome, err = decimal.NewFromString(income); err != nil {
		return core.Wallet{}, fmt.Errorf("parse wallet income %q: %w", income, err)
	}
	if w.TotalExpenses, err = decimal.NewFromString(expenses); err != nil {
		return core.Wallet{}, fmt.Errorf("parse wallet expenses %q: %w", expenses, err)
	}
	w.Created = parseDate(made)
	return w, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateFormat)
}

// parseDate is lenient: an empty or malformed stored date comes back as the
// zero time, which the query pipeline treats as "matches no time window".
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
