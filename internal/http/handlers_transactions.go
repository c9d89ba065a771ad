package http

import (
	"net/http"

	"contas/internal/core"
)

type transactionRequest struct {
	Description      string               `json:"description"`
	Amount           float64              `json:"amount"`
	CategoryID       string               `json:"categoryId"`
	PaidBy           string               `json:"paidBy"`
	Type             core.TransactionType `json:"type"`
	IsIncrement      bool                 `json:"isIncrement"`
	IsRecurring      bool                 `json:"isRecurring"`
	IsCreditCard     bool                 `json:"isCreditCard"`
	ExcludeFromSplit bool                 `json:"excludeFromSplit"`
	IsForecast       bool                 `json:"isForecast"`
	Date             core.Date            `json:"date"`
}

type transactionPatch struct {
	Description      *string               `json:"description"`
	Amount           *float64              `json:"amount"`
	CategoryID       *string               `json:"categoryId"`
	PaidBy           *string               `json:"paidBy"`
	Type             *core.TransactionType `json:"type"`
	IsIncrement      *bool                 `json:"isIncrement"`
	IsRecurring      *bool                 `json:"isRecurring"`
	IsCreditCard     *bool                 `json:"isCreditCard"`
	ExcludeFromSplit *bool                 `json:"excludeFromSplit"`
	IsForecast       *bool                 `json:"isForecast"`
	Date             *core.Date            `json:"date"`
}

func (p transactionPatch) apply(t core.Transaction) core.Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.PaidBy != nil {
		t.PaidBy = *p.PaidBy
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.IsIncrement != nil {
		t.IsIncrement = *p.IsIncrement
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.IsCreditCard != nil {
		t.IsCreditCard = *p.IsCreditCard
	}
	if p.ExcludeFromSplit != nil {
		t.ExcludeFromSplit = *p.ExcludeFromSplit
	}
	if p.IsForecast != nil {
		t.IsForecast = *p.IsForecast
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

// handleListTransactions lists one period's transactions; year/month default
// to the current month.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r.URL.Query(), s.now)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), core.Transaction{
		Description:      req.Description,
		Amount:           req.Amount,
		CategoryID:       req.CategoryID,
		PaidBy:           req.PaidBy,
		Type:             req.Type,
		IsIncrement:      req.IsIncrement,
		IsRecurring:      req.IsRecurring,
		IsCreditCard:     req.IsCreditCard,
		ExcludeFromSplit: req.ExcludeFromSplit,
		IsForecast:       req.IsForecast,
		Date:             req.Date,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handlePatchTransaction(w http.ResponseWriter, r *http.Request) {
	var patch transactionPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	t, err := s.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	t = patch.apply(t)
	if err := s.ledger.UpdateTransaction(r.Context(), t); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
