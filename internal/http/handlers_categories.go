package http

import (
	"net/http"

	"finledger/internal/core"
)

type createCategoryRequest struct {
	Name     string            `json:"name"`
	Type     core.CategoryType `json:"type"`
	IsFixed  bool              `json:"is_fixed"`
	ParentID int64             `json:"parent_id"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Categories.List(r.Context(), defaultUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.deps.Categories.Create(r.Context(), core.Category{
		UserID:   defaultUserID,
		Name:     req.Name,
		Type:     req.Type,
		IsFixed:  req.IsFixed,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
