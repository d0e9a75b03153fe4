package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
	"finledger/internal/services"
	"finledger/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	transactions := services.NewTransactionService(repo)
	srv := NewServer(":0", Deps{
		Accounts:     services.NewAccountService(repo),
		Categories:   services.NewCategoryService(repo),
		Transactions: transactions,
		Recurring:    services.NewRecurringService(repo),
		Processor:    services.NewRecurringProcessor(repo, transactions),
		Summary:      services.NewSummaryService(repo, time.Minute),
		Snapshots:    repo,
	}, 10000)
	t.Cleanup(srv.Stop)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:12345"
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
}

func TestAccountEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":    "Main checking",
		"type":    "checking",
		"balance": "100.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	account := decodeBody[core.Account](t, rec)
	require.NotZero(t, account.ID)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("100")))

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]core.Account](t, rec), 1)

	rec = doJSON(t, srv, http.MethodPatch, "/api/v1/accounts/1", map[string]any{
		"name": "Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Renamed", decodeBody[core.Account](t, rec).Name)

	// Balance is not zero, so the delete is refused.
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/accounts/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/accounts/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":    "Main checking",
		"type":    "checking",
		"balance": "100.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "Food",
		"type": "expense",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Category by name instead of id.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id":       1,
		"category":         "Food",
		"type":             "expense",
		"amount":           "25.50",
		"transaction_date": "2024-05-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[core.Transaction](t, rec)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("25.50")))

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/accounts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[core.Account](t, rec).Balance.Equal(decimal.RequireFromString("74.50")))

	// Overdraft attempt.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id":       1,
		"category":         "Food",
		"type":             "expense",
		"amount":           "500.00",
		"transaction_date": "2024-05-03",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id":       9999,
		"category":         "Food",
		"type":             "expense",
		"amount":           "5.00",
		"transaction_date": "2024-05-03",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown fields are rejected rather than silently dropped.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/transactions", map[string]any{
		"account_id": 1,
		"surprise":   true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions?account_id=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]core.Transaction](t, rec), 1)
}

func TestRecurringProcessEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":    "Main checking",
		"type":    "checking",
		"balance": "1000.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/categories", map[string]any{
		"name":     "Rent",
		"type":     "expense",
		"is_fixed": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/recurring", map[string]any{
		"account_id":   1,
		"category":     "Rent",
		"type":         "expense",
		"amount":       "800.00",
		"frequency":    "monthly",
		"day_of_month": 5,
		"start_date":   "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/recurring/process?date=2024-05-05", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeBody[core.SweepResult](t, rec)
	assert.Equal(t, 1, result.ProcessedCount)

	// Same sweep again materializes nothing.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/recurring/process?date=2024-05-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeBody[core.SweepResult](t, rec).ProcessedCount)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/accounts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[core.Account](t, rec).Balance.Equal(decimal.RequireFromString("200")))
}

func TestSummaryAndSnapshotEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/accounts", map[string]any{
		"name":    "Savings",
		"type":    "savings",
		"balance": "250.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[core.Summary](t, rec)
	assert.True(t, summary.TotalAssets.Equal(decimal.RequireFromString("250")))
	assert.True(t, summary.NetWorth.Equal(summary.TotalAssets))

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/snapshots", map[string]any{
		"total_assets":  "250.00",
		"net_worth":     "250.00",
		"snapshot_date": "2024-05-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/summary/net-worth-trend?months=6", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trend := decodeBody[core.NetWorthTrend](t, rec)
	assert.Equal(t, []string{"2024-05"}, trend.Labels)

	// Missing snapshot date is rejected before touching storage.
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/snapshots", map[string]any{
		"total_assets": "250.00",
		"net_worth":    "250.00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
