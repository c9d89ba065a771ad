// Package http serves the JSON API: ledger CRUD, period reports,
// simulations and the operational endpoints.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
)

// envelope is the uniform response shape: {"success":true,"data":...} on
// success, {"success":false,"error":{...}} on failure.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeBadRequest  = "bad_request"
	codeNotFound    = "not_found"
	codeValidation  = "validation_failed"
	codeConflict    = "conflict"
	codeUnavailable = "unavailable"
	codeInternal    = "internal_error"
)

// validationErrs are the domain sentinels a client can fix by changing its
// input. They map to 422 rather than 500.
var validationErrs = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrEmptyDescription,
	core.ErrExpenseNeedsCtg,
	core.ErrIncomeWithCategory,
	core.ErrInvalidDate,
	core.ErrEmptyName,
	core.ErrNegativeIncome,
	core.ErrInvalidTargetShare,
	core.ErrInvalidScenario,
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
}

// writeServiceError maps a service-layer error onto the envelope. Unmapped
// errors become an opaque 500: the detail goes to the log, not the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
	case errors.Is(err, core.ErrNoReplacementPerson):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, services.ErrBrokerRequired):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, err.Error())
	case isValidationErr(err):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
	default:
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).
			ErrorContext(r.Context(), "Request failed",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldError, err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func isValidationErr(err error) bool {
	for _, sentinel := range validationErrs {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
