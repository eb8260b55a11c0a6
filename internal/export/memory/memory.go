// Package memory is the in-memory export adapter, used in tests and in
// deployments without a configured spreadsheet.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ahorrapp/internal/core"
	"ahorrapp/internal/export"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var (
	_ export.RowAppender = (*Store)(nil)
	_ export.RowRemover  = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, t)
	return fmt.Sprintf("row-%d", len(s.rows)), nil
}

func (s *Store) Remove(ctx context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.rows {
		if r.ID == transactionID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	// Removing a row that was never exported is not an error: the export is
	// a best-effort mirror.
	return nil
}

// Rows returns a snapshot of the exported transactions.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, len(s.rows))
	copy(out, s.rows)
	return out
}
