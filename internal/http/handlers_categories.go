package http

import (
	"net/http"

	"contas/internal/core"
)

type categoryRequest struct {
	Name          string  `json:"name"`
	TargetPercent float64 `json:"targetPercent"`
}

type categoryPatch struct {
	Name          *string  `json:"name"`
	TargetPercent *float64 `json:"targetPercent"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	created, err := s.ledger.CreateCategory(r.Context(), core.Category{
		Name:          req.Name,
		TargetPercent: req.TargetPercent,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.ledger.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handlePatchCategory(w http.ResponseWriter, r *http.Request) {
	var patch categoryPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	category, err := s.ledger.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.TargetPercent != nil {
		category.TargetPercent = *patch.TargetPercent
	}

	if err := s.ledger.UpdateCategory(r.Context(), category); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
