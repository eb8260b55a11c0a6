package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ahorrapp/internal/log"
	"ahorrapp/internal/middleware/ratelimit"
	"ahorrapp/internal/middleware/trace"
	"ahorrapp/internal/services"
)

type Server struct {
	http.Server

	transactions *services.TransactionService
	wallets      *services.WalletService
	users        *services.UserService

	logger       *log.Logger
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// HTTP server.
func NewServer(addr string, transactions *services.TransactionService, wallets *services.WalletService, users *services.UserService, logger *log.Logger, requestsPerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		transactions: transactions,
		wallets:      wallets,
		users:        users,
		logger:       logger,
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: requestsPerMinute}),
	}

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)

	mux.HandleFunc("GET /api/transactions", s.withRateLimit(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/summary", s.withRateLimit(s.handleTransactionSummary))
	mux.HandleFunc("POST /api/transactions", s.withRateLimit(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withRateLimit(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withRateLimit(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withRateLimit(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/wallets", s.withRateLimit(s.handleListWallets))
	mux.HandleFunc("POST /api/wallets", s.withRateLimit(s.handleCreateWallet))
	mux.HandleFunc("GET /api/wallets/{id}", s.withRateLimit(s.handleGetWallet))
	mux.HandleFunc("PUT /api/wallets/{id}", s.withRateLimit(s.handleUpdateWallet))
	mux.HandleFunc("DELETE /api/wallets/{id}", s.withRateLimit(s.handleDeleteWallet))
	mux.HandleFunc("POST /api/wallets/{id}/image", s.withRateLimit(s.handleUploadWalletImage))

	mux.HandleFunc("GET /api/users/{id}", s.withRateLimit(s.handleGetUser))
	mux.HandleFunc("PUT /api/users/{id}", s.withRateLimit(s.handleSaveUser))
	mux.HandleFunc("POST /api/users/{id}/avatar", s.withRateLimit(s.handleUploadAvatar))

	traced := trace.NewMiddleware(logger, extractClientIP)
	s.Handler = log.Middleware(logger)(traced.Middleware(mux))

	return s
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(extractClientIP(r)) {
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

// Shutdown stops the server and its rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
