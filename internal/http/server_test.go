package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ahorrapp/internal/cache"
	"ahorrapp/internal/log"
	"ahorrapp/internal/middleware/ratelimit"
	"ahorrapp/internal/services"
	"ahorrapp/internal/storage"

	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Level: slog.LevelError, Component: log.ComponentHTTP})
	summaries := cache.NewSummaryCache(64, time.Minute)

	txSvc := services.NewTransactionService(repo, nil, summaries, decimal.NewFromInt(2000))
	walletSvc := services.NewWalletService(repo, nil, summaries)
	userSvc := services.NewUserService(repo, nil)

	srv := NewServer(":0", txSvc, walletSvc, userSvc, logger, 10000)
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func createWallet(t *testing.T, srv *Server, uid, name string) string {
	t.Helper()
	rec, env := doJSON(t, srv, http.MethodPost, "/api/wallets", map[string]string{"uid": uid, "name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create wallet: status %d, body %s", rec.Code, rec.Body.String())
	}
	return env.Data.(map[string]any)["id"].(string)
}

func createTransaction(t *testing.T, srv *Server, uid, walletID, typ, amount, category string, date time.Time) string {
	t.Helper()
	rec, env := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"uid":      uid,
		"walletId": walletID,
		"type":     typ,
		"amount":   json.Number(amount),
		"category": category,
		"date":     date.Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: status %d, body %s", rec.Code, rec.Body.String())
	}
	return env.Data.(map[string]any)["id"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("body = %q; want ok", got)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	now := time.Now().UTC()

	walletID := createWallet(t, srv, "u1", "Principal")
	id := createTransaction(t, srv, "u1", walletID, "expense", "45.99", "dining", now)

	t.Run("get", func(t *testing.T) {
		rec, env := doJSON(t, srv, http.MethodGet, "/api/transactions/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		data := env.Data.(map[string]any)
		if data["amount"] != "45.99" {
			t.Errorf("amount = %v; want 45.99", data["amount"])
		}
		if data["categoryLabel"] != "Restaurantes" {
			t.Errorf("categoryLabel = %v; want Restaurantes", data["categoryLabel"])
		}
	})

	t.Run("list", func(t *testing.T) {
		rec, env := doJSON(t, srv, http.MethodGet, "/api/transactions?uid=u1&filter=month&sort=amount-desc", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if got := len(env.Data.([]any)); got != 1 {
			t.Fatalf("len = %d; want 1", got)
		}
	})

	t.Run("search excludes", func(t *testing.T) {
		_, env := doJSON(t, srv, http.MethodGet, "/api/transactions?uid=u1&q=nomatch", nil)
		if got := len(env.Data.([]any)); got != 0 {
			t.Fatalf("len = %d; want 0", got)
		}
	})

	t.Run("update", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodPut, "/api/transactions/"+id, map[string]any{
			"uid":      "u1",
			"walletId": walletID,
			"type":     "expense",
			"amount":   json.Number("50"),
			"category": "groceries",
			"date":     now.Format(time.RFC3339),
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		_, env := doJSON(t, srv, http.MethodGet, "/api/transactions/"+id, nil)
		if got := env.Data.(map[string]any)["category"]; got != "groceries" {
			t.Errorf("category = %v; want groceries", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodDelete, "/api/transactions/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		rec, _ = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+id, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("second delete status = %d; want 404", rec.Code)
		}
	})
}

func TestCreateTransactionValidation(t *testing.T) {
	srv := newTestServer(t)
	walletID := createWallet(t, srv, "u1", "Principal")

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "bad type",
			body: map[string]any{"uid": "u1", "walletId": walletID, "type": "transfer", "amount": json.Number("1"), "date": time.Now().Format(time.RFC3339)},
			want: http.StatusBadRequest,
		},
		{
			name: "negative amount",
			body: map[string]any{"uid": "u1", "walletId": walletID, "type": "expense", "amount": json.Number("-5"), "date": time.Now().Format(time.RFC3339)},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown wallet",
			body: map[string]any{"uid": "u1", "walletId": "nope", "type": "expense", "amount": json.Number("5"), "date": time.Now().Format(time.RFC3339)},
			want: http.StatusNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doJSON(t, srv, http.MethodPost, "/api/transactions", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d; want %d", rec.Code, tc.want)
			}
			if env.Success {
				t.Fatal("expected success=false")
			}
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want 400", rec.Code)
		}
	})
}

func TestListTransactionsRequiresUID(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}

func TestTransactionSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	now := time.Now().UTC()

	walletID := createWallet(t, srv, "u1", "Principal")
	createTransaction(t, srv, "u1", walletID, "income", "1000", "salary", now)
	createTransaction(t, srv, "u1", walletID, "expense", "400", "rent", now)

	rec, env := doJSON(t, srv, http.MethodGet, "/api/transactions/summary?uid=u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	data := env.Data.(map[string]any)
	if data["balance"] != "600" {
		t.Errorf("balance = %v; want 600", data["balance"])
	}
	if data["totalTransactions"] != float64(2) {
		t.Errorf("totalTransactions = %v; want 2", data["totalTransactions"])
	}
	if data["savingsRate"] != float64(60) {
		t.Errorf("savingsRate = %v; want 60", data["savingsRate"])
	}
}

func TestWalletEndpoints(t *testing.T) {
	srv := newTestServer(t)

	id := createWallet(t, srv, "u1", "Ahorros")

	t.Run("list", func(t *testing.T) {
		rec, env := doJSON(t, srv, http.MethodGet, "/api/wallets?uid=u1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		wallets := env.Data.([]any)
		if len(wallets) != 1 {
			t.Fatalf("len = %d; want 1", len(wallets))
		}
		if got := wallets[0].(map[string]any)["name"]; got != "Ahorros" {
			t.Errorf("name = %v; want Ahorros", got)
		}
	})

	t.Run("rename", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodPut, "/api/wallets/"+id, map[string]string{"uid": "u1", "name": "Gastos"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		_, env := doJSON(t, srv, http.MethodGet, "/api/wallets/"+id, nil)
		if got := env.Data.(map[string]any)["name"]; got != "Gastos" {
			t.Errorf("name = %v; want Gastos", got)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodPost, "/api/wallets", map[string]string{"uid": "u1", "name": "  "})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want 400", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodDelete, "/api/wallets/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		rec, _ = doJSON(t, srv, http.MethodGet, "/api/wallets/"+id, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("get after delete status = %d; want 404", rec.Code)
		}
	})
}

func TestUserEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodPut, "/api/users/u1", map[string]string{"name": "Ana", "email": "ana@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d; want 200", rec.Code)
	}

	rec, env := doJSON(t, srv, http.MethodGet, "/api/users/u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d; want 200", rec.Code)
	}
	if got := env.Data.(map[string]any)["name"]; got != "Ana" {
		t.Errorf("name = %v; want Ana", got)
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/users/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing user status = %d; want 404", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doJSON(t, srv, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	cats := env.Data.([]any)
	if len(cats) != 14 {
		t.Fatalf("len = %d; want 14", len(cats))
	}
}

func TestUploadWithoutImageConfig(t *testing.T) {
	srv := newTestServer(t)
	id := createWallet(t, srv, "u1", "Principal")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "w.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	fmt.Fprint(part, "png-bytes")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/wallets/"+id+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500 when uploads are not configured", rec.Code)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	srv := newTestServer(t)
	srv.limiter.Stop()
	srv.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 2, CleanupInterval: time.Minute})
	defer srv.limiter.Stop()

	var last int
	for i := 0; i < 3; i++ {
		rec, _ := doJSON(t, srv, http.MethodGet, "/api/transactions?uid=u1", nil)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d; want 429", last)
	}
}
