package http

import (
	"net/http"
	"strings"
	"time"

	"ahorrapp/internal/core"
	"ahorrapp/internal/log"

	"github.com/shopspring/decimal"
)

type transactionPayload struct {
	UID         string          `json:"uid"`
	WalletID    string          `json:"walletId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

type transactionView struct {
	ID            string          `json:"id"`
	UID           string          `json:"uid"`
	WalletID      string          `json:"walletId"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	CategoryLabel string          `json:"categoryLabel"`
	Date          *time.Time      `json:"date"`
	Description   string          `json:"description,omitempty"`
}

func (p transactionPayload) toTransaction(id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		UID:         sanitizeInput(p.UID),
		WalletID:    sanitizeInput(p.WalletID),
		Type:        core.TransactionType(p.Type),
		Amount:      p.Amount,
		Category:    sanitizeInput(p.Category),
		Date:        p.Date,
		Description: sanitizeInput(p.Description),
	}
}

func viewTransaction(t core.Transaction) transactionView {
	v := transactionView{
		ID:            t.ID,
		UID:           t.UID,
		WalletID:      t.WalletID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Category:      t.Category,
		CategoryLabel: core.ResolveCategory(t.Category).Label,
		Description:   t.Description,
	}
	if !t.Date.IsZero() {
		v.Date = &t.Date
	}
	return v
}

func viewTransactions(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, viewTransaction(t))
	}
	return out
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	opts := parseViewOptions(r)

	if walletID := strings.TrimSpace(r.URL.Query().Get("wallet")); walletID != "" {
		txs, err := s.transactions.ListWalletTransactions(r.Context(), walletID, opts, time.Now())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondData(w, http.StatusOK, viewTransactions(txs))
		return
	}

	uid, ok := requireUID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing uid")
		return
	}

	txs, err := s.transactions.ListTransactions(r.Context(), uid, opts, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.FromContext(r.Context()).DebugContext(r.Context(), "Transaction view computed",
		log.FieldUserID, uid,
		log.FieldFilter, string(opts.Filter),
		log.FieldSort, string(opts.Sort))
	respondData(w, http.StatusOK, viewTransactions(txs))
}

func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing uid")
		return
	}

	summary, err := s.transactions.Summary(r.Context(), uid, parseViewOptions(r), time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, summary)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, viewTransaction(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if !decodeJSON(w, r, &p) {
		return
	}

	id, err := s.transactions.CreateTransaction(r.Context(), p.toTransaction(""))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldTransactionID, id,
		log.FieldUserID, p.UID,
		log.FieldWalletID, p.WalletID,
		log.FieldCategory, p.Category)
	respondData(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var p transactionPayload
	if !decodeJSON(w, r, &p) {
		return
	}

	if err := s.transactions.UpdateTransaction(r.Context(), p.toTransaction(r.PathValue("id"))); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	type categoryView struct {
		Key   string `json:"key"`
		Label string `json:"label"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}

	cats := core.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Key: c.Key, Label: c.Label, Icon: c.Icon, Color: c.Color})
	}
	respondData(w, http.StatusOK, out)
}
