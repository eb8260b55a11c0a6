package http

import (
	"net/http"
	"time"

	"ahorrapp/internal/core"

	"github.com/shopspring/decimal"
)

// 8 MiB is plenty for wallet images and avatars.
const maxImageUpload = 8 << 20

type walletPayload struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type walletView struct {
	ID            string          `json:"id"`
	UID           string          `json:"uid"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Created       time.Time       `json:"created"`
}

func viewWallet(w core.Wallet) walletView {
	return walletView{
		ID:            w.ID,
		UID:           w.UID,
		Name:          w.Name,
		Image:         w.Image,
		Amount:        w.Amount,
		TotalIncome:   w.TotalIncome,
		TotalExpenses: w.TotalExpenses,
		Created:       w.Created,
	}
}

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing uid")
		return
	}

	wallets, err := s.wallets.ListWallets(r.Context(), uid)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]walletView, 0, len(wallets))
	for _, wal := range wallets {
		out = append(out, viewWallet(wal))
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	wal, err := s.wallets.GetWallet(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, viewWallet(wal))
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var p walletPayload
	if !decodeJSON(w, r, &p) {
		return
	}

	id, err := s.wallets.CreateWallet(r.Context(), core.Wallet{
		UID:   sanitizeInput(p.UID),
		Name:  sanitizeInput(p.Name),
		Image: sanitizeInput(p.Image),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	var p walletPayload
	if !decodeJSON(w, r, &p) {
		return
	}

	err := s.wallets.UpdateWallet(r.Context(), core.Wallet{
		ID:    r.PathValue("id"),
		UID:   sanitizeInput(p.UID),
		Name:  sanitizeInput(p.Name),
		Image: sanitizeInput(p.Image),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.wallets.DeleteWallet(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

func (s *Server) handleUploadWalletImage(w http.ResponseWriter, r *http.Request) {
	file, header, ok := parseImageUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	url, err := s.wallets.UploadImage(r.Context(), r.PathValue("id"), header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"url": url})
}
