package http

import (
	"encoding/json"
	"net/http"

	"finledger/internal/core"

	"github.com/shopspring/decimal"
)

func (s *Server) handleFullSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Summary.FullSummary(r.Context(), defaultUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if summary.Accounts == nil {
		summary.Accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTotalAssets(w http.ResponseWriter, r *http.Request) {
	total, err := s.deps.Summary.TotalAssets(r.Context(), defaultUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total_assets": total})
}

func (s *Server) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.deps.Summary.MonthlyFixedExpenses(r.Context(), defaultUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"monthly_fixed_expenses": expenses})
}

func (s *Server) handleMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	income, err := s.deps.Summary.MonthlyFixedIncome(r.Context(), defaultUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"monthly_fixed_income": income})
}

func (s *Server) handleNetWorthTrend(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 6)
	trend, err := s.deps.Summary.NetWorthTrend(r.Context(), defaultUserID, months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

type createSnapshotRequest struct {
	TotalAssets     decimal.Decimal `json:"total_assets"`
	NetWorth        decimal.Decimal `json:"net_worth"`
	AccountsSummary json.RawMessage `json:"accounts_summary"`
	SnapshotDate    core.Date       `json:"snapshot_date"`
}

// handleCreateSnapshot ingests one write-once snapshot from the external
// snapshotting process.
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req createSnapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.SnapshotDate.IsZero() {
		badRequest(w, "snapshot_date is required")
		return
	}

	created, err := s.deps.Snapshots.InsertSnapshot(r.Context(), core.AssetSnapshot{
		UserID:          defaultUserID,
		TotalAssets:     req.TotalAssets,
		NetWorth:        req.NetWorth,
		AccountsSummary: req.AccountsSummary,
		SnapshotDate:    req.SnapshotDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
