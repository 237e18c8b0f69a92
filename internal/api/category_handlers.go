package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/seller-panel/internal/domain/category"
)

// CategoryHandlers exposes the category tree over HTTP.
type CategoryHandlers struct {
	categories *category.Service
}

func NewCategoryHandlers(categories *category.Service) *CategoryHandlers {
	return &CategoryHandlers{categories: categories}
}

func (h *CategoryHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if cats == nil {
		cats = []*category.Category{}
	}
	respondJSON(w, http.StatusOK, cats)
}

type categoryRequest struct {
	Name      string `json:"name"`
	ParentID  string `json:"parent_id"`
	SortOrder int    `json:"sort_order"`
}

func (h *CategoryHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.categories.Create(r.Context(), req.Name, req.ParentID, req.SortOrder)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/categories/")

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.categories.Update(r.Context(), id, req.Name, req.ParentID, req.SortOrder)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CategoryHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/categories/")

	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
