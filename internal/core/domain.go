package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is a single dated income or expense record tied to a wallet.
	// Records are immutable once created; edits replace the stored row.
	Transaction struct {
		ID          string
		UID         string
		WalletID    string
		Type        TransactionType
		Amount      decimal.Decimal
		Category    string
		Date        time.Time
		Description string
	}

	// Wallet is a named balance-holding container owned by a user. Amount,
	// TotalIncome and TotalExpenses are running totals maintained by the
	// recalc worker, not by the request path.
	Wallet struct {
		ID            string
		UID           string
		Name          string
		Image         string
		Amount        decimal.Decimal
		TotalIncome   decimal.Decimal
		TotalExpenses decimal.Decimal
		Created       time.Time
	}

	User struct {
		ID    string
		Name  string
		Email string
		Image string
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrMissingWallet   = errors.New("missing wallet reference")
	ErrMissingUser     = errors.New("missing user reference")
	ErrEmptyWalletName = errors.New("empty wallet name")
	ErrEmptyUserName   = errors.New("empty user name")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(t.WalletID) == "" {
		return ErrMissingWallet
	}
	if strings.TrimSpace(t.UID) == "" {
		return ErrMissingUser
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyWalletName
	}
	if len(w.Name) > 100 {
		return errors.New("wallet name too long (max 100 characters)")
	}
	if strings.TrimSpace(w.UID) == "" {
		return ErrMissingUser
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyUserName
	}
	return nil
}

// Net returns income minus expenses for a set of transactions.
func Net(txs []Transaction) decimal.Decimal {
	net := decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case Income:
			net = net.Add(t.Amount)
		case Expense:
			net = net.Sub(t.Amount)
		}
	}
	return net
}
