package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

type transactionResponse struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
}

func newTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Description: tx.Description,
		Category:    tx.Category,
		Type:        tx.Type.String(),
		Amount:      tx.Amount,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v before touching the status line, so an unencodable
// value turns into a 500 instead of a 2xx with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", log.FieldComponent, log.ComponentHTTP, log.FieldError, err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeError maps service errors onto status codes. Validation messages are
// returned verbatim; storage details are only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	switch {
	case errors.Is(err, errMalformedBody):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrMissingRequiredField),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: validationMessage(err)})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: core.ErrNotFound.Error()})
	case errors.Is(err, core.ErrStorageUnavailable):
		logger.ErrorContext(ctx, "Storage unavailable", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: core.ErrStorageUnavailable.Error()})
	default:
		logger.ErrorContext(ctx, "Request failed", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingRequiredField):
		return "please fill in date, category, type and amount"
	case errors.Is(err, core.ErrInvalidAmount):
		return "please enter a valid non-negative amount"
	case errors.Is(err, core.ErrInvalidType):
		return "type must be INCOME or EXPENSE"
	default:
		return "date must be formatted as YYYY-MM-DD"
	}
}
