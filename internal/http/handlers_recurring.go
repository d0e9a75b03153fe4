package http

import (
	"net/http"

	"finledger/internal/core"
	"finledger/internal/storage"

	"github.com/shopspring/decimal"
)

type createRecurringRequest struct {
	AccountID   int64                `json:"account_id"`
	CategoryID  int64                `json:"category_id"`
	Category    string               `json:"category"`
	Type        core.TransactionType `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Description string               `json:"description"`
	Frequency   core.Frequency       `json:"frequency"`
	DayOfMonth  int                  `json:"day_of_month"`
	StartDate   core.Date            `json:"start_date"`
	EndDate     core.Date            `json:"end_date"`
}

type updateRecurringRequest struct {
	Amount     *decimal.Decimal `json:"amount"`
	DayOfMonth *int             `json:"day_of_month"`
	IsActive   *bool            `json:"is_active"`
	EndDate    *core.Date       `json:"end_date"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	accountID := int64(queryInt(r, "account_id", 0))
	rules, err := s.deps.Recurring.List(r.Context(), defaultUserID, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rules == nil {
		rules = []core.RecurringTransaction{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid recurring transaction id")
		return
	}
	rule, err := s.deps.Recurring.Get(r.Context(), defaultUserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
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

	created, err := s.deps.Recurring.Create(r.Context(), defaultUserID, core.RecurringTransaction{
		AccountID:   req.AccountID,
		CategoryID:  categoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Frequency:   req.Frequency,
		DayOfMonth:  req.DayOfMonth,
		IsActive:    true,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid recurring transaction id")
		return
	}
	var req updateRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	upd := storage.RecurringUpdate{
		DayOfMonth: req.DayOfMonth,
		IsActive:   req.IsActive,
		EndDate:    req.EndDate,
	}
	if req.Amount != nil {
		amount := req.Amount.String()
		upd.Amount = &amount
	}

	updated, err := s.deps.Recurring.Update(r.Context(), defaultUserID, id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeactivateRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid recurring transaction id")
		return
	}
	if err := s.deps.Recurring.Deactivate(r.Context(), defaultUserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid recurring transaction id")
		return
	}
	if err := s.deps.Recurring.Delete(r.Context(), defaultUserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleProcessRecurring runs one sweep. The target date defaults to today
// and can be overridden with ?date=YYYY-MM-DD.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	target, err := queryDate(r, "date")
	if err != nil {
		badRequest(w, "invalid date")
		return
	}
	if target.IsZero() {
		target = core.Today()
	}

	result, err := s.deps.Processor.ProcessDue(r.Context(), defaultUserID, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
