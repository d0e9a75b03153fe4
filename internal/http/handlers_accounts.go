package http

import (
	"net/http"

	"finledger/internal/core"
	"finledger/internal/storage"

	"github.com/shopspring/decimal"
)

type createAccountRequest struct {
	Name          string           `json:"name"`
	Type          core.AccountType `json:"type"`
	Balance       decimal.Decimal  `json:"balance"`
	Institution   string           `json:"institution"`
	AccountNumber string           `json:"account_number"`
}

type updateAccountRequest struct {
	Name          *string           `json:"name"`
	Type          *core.AccountType `json:"type"`
	Institution   *string           `json:"institution"`
	AccountNumber *string           `json:"account_number"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Accounts.List(r.Context(), defaultUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid account id")
		return
	}
	account, err := s.deps.Accounts.Get(r.Context(), defaultUserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	account, err := s.deps.Accounts.Create(r.Context(), core.Account{
		UserID:        defaultUserID,
		Name:          req.Name,
		Type:          req.Type,
		Balance:       req.Balance,
		Institution:   req.Institution,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid account id")
		return
	}
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	account, err := s.deps.Accounts.Update(r.Context(), defaultUserID, id, storage.AccountUpdate{
		Name:          req.Name,
		Type:          req.Type,
		Institution:   req.Institution,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid account id")
		return
	}
	if err := s.deps.Accounts.Delete(r.Context(), defaultUserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
