package http

import (
	"net/http"

	"finledger/internal/core"
	"finledger/internal/storage"

	"github.com/shopspring/decimal"
)

type createTransactionRequest struct {
	AccountID   int64                `json:"account_id"`
	CategoryID  int64                `json:"category_id"`
	Category    string               `json:"category"` // name form, resolved once here
	Type        core.TransactionType `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Description string               `json:"description"`
	Date        core.Date            `json:"transaction_date"`
}

type updateTransactionRequest struct {
	CategoryID  *int64                `json:"category_id"`
	Type        *core.TransactionType `json:"type"`
	Amount      *decimal.Decimal      `json:"amount"`
	Description *string               `json:"description"`
	Date        *core.Date            `json:"transaction_date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "start_date")
	if err != nil {
		badRequest(w, "invalid start_date")
		return
	}
	to, err := queryDate(r, "end_date")
	if err != nil {
		badRequest(w, "invalid end_date")
		return
	}

	filter := storage.TransactionFilter{
		AccountID: int64(queryInt(r, "account_id", 0)),
		From:      from,
		To:        to,
		Limit:     queryInt(r, "limit", 100),
	}

	transactions, err := s.deps.Transactions.List(r.Context(), defaultUserID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	categoryID := req.CategoryID
	if categoryID == 0 && req.Category != "" {
		cat, err := s.deps.Categories.ResolveByName(r.Context(), defaultUserID, req.Category)
		if err != nil {
			writeError(w, r, err)
			return
		}
		categoryID = cat.ID
	}

	created, err := s.deps.Transactions.Create(r.Context(), defaultUserID, core.Transaction{
		AccountID:   req.AccountID,
		CategoryID:  categoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	upd := storage.TransactionUpdate{
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date,
	}
	if req.Amount != nil {
		amount := req.Amount.String()
		upd.Amount = &amount
	}

	updated, err := s.deps.Transactions.Update(r.Context(), defaultUserID, id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid transaction id")
		return
	}
	if err := s.deps.Transactions.Delete(r.Context(), defaultUserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMonthlySpending(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "accountID")
	if !ok {
		badRequest(w, "invalid account id")
		return
	}
	year, ok := pathID(r, "year")
	if !ok {
		badRequest(w, "invalid year")
		return
	}
	month, ok := pathID(r, "month")
	if !ok || month < 1 || month > 12 {
		badRequest(w, "invalid month")
		return
	}

	breakdown, err := s.deps.Transactions.MonthlySpendingByCategory(
		r.Context(), defaultUserID, accountID, int(year), int(month))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if breakdown == nil {
		breakdown = []core.CategoryAmount{}
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	summary, err := s.deps.Transactions.MonthlySummary(r.Context(), defaultUserID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
