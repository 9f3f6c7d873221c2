package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed request body")

// transactionRequest accepts amount as either a JSON number or a string so
// that "12,50" typed into a form reaches core.ParseAmount unchanged.
type transactionRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Amount      json.RawMessage `json:"amount"`
}

// parseTransactionInput reads a JSON or form-encoded body into the raw input
// the service validates.
func parseTransactionInput(w http.ResponseWriter, r *http.Request) (core.TransactionInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return core.TransactionInput{}, errMalformedBody
	}

	if isJSON(r.Header.Get("Content-Type"), body) {
		var req transactionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return core.TransactionInput{}, errMalformedBody
		}
		amount, err := rawAmount(req.Amount)
		if err != nil {
			return core.TransactionInput{}, errMalformedBody
		}
		return core.TransactionInput{
			Date:        req.Date,
			Description: req.Description,
			Category:    req.Category,
			Type:        req.Type,
			Amount:      amount,
		}, nil
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return core.TransactionInput{}, errMalformedBody
	}
	return core.TransactionInput{
		Date:        form.Get("date"),
		Description: form.Get("description"),
		Category:    form.Get("category"),
		Type:        form.Get("type"),
		Amount:      form.Get("amount"),
	}, nil
}

func isJSON(contentType string, body []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt == "application/json"
	}
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "{")
}

func rawAmount(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
