package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ahorrapp/internal/core"
	"ahorrapp/internal/storage"
)

// envelope is the shape of every JSON response body.
type envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Msg: msg})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondServiceError translates domain and storage errors to HTTP codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrMissingWallet),
		errors.Is(err, core.ErrMissingUser),
		errors.Is(err, core.ErrEmptyWalletName),
		errors.Is(err, core.ErrEmptyUserName):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
