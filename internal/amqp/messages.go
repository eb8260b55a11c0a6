package amqp

import (
	"encoding/json"
	"time"
)

// Kind discriminates the messages flowing through the recalc queue.
type Kind string

const (
	KindWalletRecalc      Kind = "wallet_recalc"
	KindTransactionExport Kind = "transaction_export"
)

// Message is the envelope published for async work. Payloads stay small:
// the worker fetches current state from the database, so a stale message
// never overwrites fresher data.
type Message struct {
	Kind          Kind      `json:"kind"`
	WalletID      string    `json:"wallet_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Deleted       bool      `json:"deleted,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewWalletRecalcMessage asks the worker to recompute a wallet's running
// totals from its transactions.
func NewWalletRecalcMessage(walletID string) *Message {
	return &Message{
		Kind:      KindWalletRecalc,
		WalletID:  walletID,
		Timestamp: time.Now(),
	}
}

// NewTransactionExportMessage asks the worker to mirror a transaction to the
// spreadsheet backup.
func NewTransactionExportMessage(transactionID string, deleted bool) *Message {
	return &Message{
		Kind:          KindTransactionExport,
		TransactionID: transactionID,
		Deleted:       deleted,
		Timestamp:     time.Now(),
	}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
