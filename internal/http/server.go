// Package http is the JSON boundary over the ledger services: thin
// handlers that parse input, resolve the owner, call one service operation
// and map typed failures onto status codes.
package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"finledger/internal/core"
	"finledger/internal/middleware/ratelimit"
	"finledger/internal/middleware/security"
	"finledger/internal/middleware/trace"
	"finledger/internal/services"
)

// defaultUserID is the owner every request resolves to. The engine itself
// threads the id explicitly; only this boundary pins it, matching the
// single-user deployment.
const defaultUserID int64 = 1

// Deps collects the services the server fronts.
type Deps struct {
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Recurring    *services.RecurringService
	Processor    *services.RecurringProcessor
	Summary      *services.SummaryService
	Snapshots    SnapshotWriter
}

// SnapshotWriter is the slice of storage the snapshot ingest endpoint needs.
type SnapshotWriter interface {
	InsertSnapshot(ctx context.Context, s core.AssetSnapshot) (core.AssetSnapshot, error)
}

type Server struct {
	*http.Server
	deps    Deps
	limiter *ratelimit.Limiter
}

// NewServer wires routes and middleware and returns a ready-to-run server.
func NewServer(addr string, deps Deps, requestsPerMinute int) *Server {
	s := &Server{
		deps: deps,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: requestsPerMinute,
		}),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/v1/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/v1/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/v1/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PATCH /api/v1/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/v1/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /api/v1/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/v1/categories", s.handleCreateCategory)

	mux.HandleFunc("GET /api/v1/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PATCH /api/v1/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/v1/transactions/monthly-spending/{accountID}/{year}/{month}", s.handleMonthlySpending)
	mux.HandleFunc("GET /api/v1/transactions/monthly-summary", s.handleMonthlySummary)

	mux.HandleFunc("GET /api/v1/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/v1/recurring", s.handleCreateRecurring)
	mux.HandleFunc("POST /api/v1/recurring/process", s.handleProcessRecurring)
	mux.HandleFunc("GET /api/v1/recurring/{id}", s.handleGetRecurring)
	mux.HandleFunc("PATCH /api/v1/recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("POST /api/v1/recurring/{id}/deactivate", s.handleDeactivateRecurring)
	mux.HandleFunc("DELETE /api/v1/recurring/{id}", s.handleDeleteRecurring)

	mux.HandleFunc("GET /api/v1/summary", s.handleFullSummary)
	mux.HandleFunc("GET /api/v1/summary/total-assets", s.handleTotalAssets)
	mux.HandleFunc("GET /api/v1/summary/monthly-expenses", s.handleMonthlyExpenses)
	mux.HandleFunc("GET /api/v1/summary/monthly-income", s.handleMonthlyIncome)
	mux.HandleFunc("GET /api/v1/summary/net-worth-trend", s.handleNetWorthTrend)

	mux.HandleFunc("POST /api/v1/snapshots", s.handleCreateSnapshot)

	traceMW := trace.NewMiddleware(clientIP)
	handler := security.Headers(traceMW.Middleware(s.rateLimited(mux)))

	s.Server = &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// Stop releases server-owned background resources.
func (s *Server) Stop() {
	s.limiter.Stop()
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
