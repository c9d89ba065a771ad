package http

import (
	"net/http"

	"contas/internal/core"
)

type personRequest struct {
	Name         string  `json:"name"`
	Income       float64 `json:"income"`
	LinkedUserID string  `json:"linkedUserId"`
}

// personPatch carries partial updates. Nil fields keep the stored value.
type personPatch struct {
	Name         *string  `json:"name"`
	Income       *float64 `json:"income"`
	LinkedUserID *string  `json:"linkedUserId"`
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.ledger.ListPeople(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	created, err := s.ledger.CreatePerson(r.Context(), core.Person{
		Name:         req.Name,
		Income:       req.Income,
		LinkedUserID: req.LinkedUserID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := s.ledger.GetPerson(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handlePatchPerson(w http.ResponseWriter, r *http.Request) {
	var patch personPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	person, err := s.ledger.GetPerson(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if patch.Name != nil {
		person.Name = *patch.Name
	}
	if patch.Income != nil {
		person.Income = *patch.Income
	}
	if patch.LinkedUserID != nil {
		person.LinkedUserID = *patch.LinkedUserID
	}

	if err := s.ledger.UpdatePerson(r.Context(), person); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	replacement := r.URL.Query().Get("replacement")
	if err := s.ledger.DeletePerson(r.Context(), r.PathValue("id"), replacement); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
