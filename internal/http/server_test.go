package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"expensetracker/internal/charts"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger/memory"
	"expensetracker/internal/services"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := services.NewTransactionService(memory.New(), nil, time.Minute)
	srv := NewServer(":0", svc, charts.NewPNGRenderer(400, 300), Options{RateLimitPerMinute: 1000})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func createJSON(t *testing.T, srv *Server, body string) transactionResponse {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/api/transactions", "application/json", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var out transactionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	first := createJSON(t, srv, `{"date":"2025-01-15","description":"lunch","category":"Food","type":"EXPENSE","amount":12.5}`)
	require.EqualValues(t, 1, first.ID)
	require.Equal(t, "2025-01-15", first.Date)
	require.Equal(t, 12.5, first.Amount)

	form := url.Values{
		"date":     {"2025-01-20"},
		"category": {"Salary"},
		"type":     {"income"},
		"amount":   {"1000,00"},
	}
	rr := do(t, srv, http.MethodPost, "/api/transactions", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/transactions", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var list []transactionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 2)
	require.Equal(t, "Salary", list[0].Category)
	require.Equal(t, "INCOME", list[0].Type)
	require.Equal(t, 1000.0, list[0].Amount)
	require.Equal(t, "", list[0].Description)
	require.Equal(t, "lunch", list[1].Description)
}

func TestListEmpty(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/transactions", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())
}

func TestCreateTransactionRejectsInvalidInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"date":`, http.StatusBadRequest},
		{"boolean amount", `{"date":"2025-01-01","category":"Food","type":"EXPENSE","amount":true}`, http.StatusBadRequest},
		{"missing amount", `{"date":"2025-01-01","category":"Food","type":"EXPENSE"}`, http.StatusUnprocessableEntity},
		{"bad amount", `{"date":"2025-01-01","category":"Food","type":"EXPENSE","amount":"abc"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"date":"2025-01-01","category":"Food","type":"EXPENSE","amount":-5}`, http.StatusUnprocessableEntity},
		{"overflowing amount string", `{"date":"2025-01-01","category":"Food","type":"EXPENSE","amount":"1` + strings.Repeat("0", 400) + `"}`, http.StatusUnprocessableEntity},
		{"overflowing amount number", `{"date":"2025-01-01","category":"Food","type":"EXPENSE","amount":1` + strings.Repeat("0", 400) + `}`, http.StatusUnprocessableEntity},
		{"bad type", `{"date":"2025-01-01","category":"Food","type":"REFUND","amount":5}`, http.StatusUnprocessableEntity},
		{"bad date", `{"date":"2025-13-01","category":"Food","type":"EXPENSE","amount":5}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", "application/json", tt.body)
			require.Equal(t, tt.want, rr.Code, rr.Body.String())

			var errResp errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
			require.NotEmpty(t, errResp.Error)
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/transactions", "", "")
	require.JSONEq(t, `[]`, rr.Body.String())
}

func TestLargeAmountsStayWellFormed(t *testing.T) {
	srv := newTestServer(t)

	createJSON(t, srv, `{"date":"2025-01-15","category":"Salary","type":"INCOME","amount":"1`+strings.Repeat("0", 300)+`"}`)
	createJSON(t, srv, `{"date":"2025-01-20","category":"Food","type":"EXPENSE","amount":"1`+strings.Repeat("0", 300)+`"}`)

	for _, path := range []string{"/api/transactions", "/api/charts/categories", "/api/charts/monthly"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.True(t, json.Valid(rr.Body.Bytes()), "%s: %s", path, rr.Body.String())
	}
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, map[string]float64{"amount": math.Inf(1)})

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.JSONEq(t, `{"error":"internal error"}`, rr.Body.String())
}

func TestGetAndDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)
	tx := createJSON(t, srv, `{"date":"2025-01-15","category":"Food","type":"EXPENSE","amount":"3"}`)

	rr := do(t, srv, http.MethodGet, "/api/transactions/1", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/transactions/abc", "", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodDelete, "/api/transactions/999", "", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, srv, http.MethodDelete, "/api/transactions/1", "", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.EqualValues(t, 1, tx.ID)

	rr = do(t, srv, http.MethodGet, "/api/transactions/1", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodPut, "/api/transactions/1", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/categories", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var cats []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cats))
	require.Equal(t, core.DefaultCategories, cats)
}

func TestChartsWithoutData(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/charts/categories", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{}`, rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/charts/monthly", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())

	for _, path := range []string{"/charts/categories.png", "/charts/monthly.png"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusNoContent, rr.Code, path)
	}
}

func TestChartsWithData(t *testing.T) {
	srv := newTestServer(t)
	createJSON(t, srv, `{"date":"2025-01-15","category":"Food","type":"EXPENSE","amount":10}`)
	createJSON(t, srv, `{"date":"2025-01-20","category":"Food","type":"EXPENSE","amount":5}`)
	createJSON(t, srv, `{"date":"2025-01-20","category":"Salary","type":"INCOME","amount":100}`)

	rr := do(t, srv, http.MethodGet, "/api/charts/categories", "", "")
	require.JSONEq(t, `{"Food":15}`, rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/charts/monthly", "", "")
	require.JSONEq(t, `[{"month":"2025-01","income":100,"expense":15}]`, rr.Body.String())

	for _, path := range []string{"/charts/categories.png", "/charts/monthly.png"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		require.True(t, bytes.HasPrefix(rr.Body.Bytes(), pngSignature), path)
	}
}

type failingRenderer struct{}

func (failingRenderer) CategoryPie(core.CategoryTotals) ([]byte, error) {
	return nil, errors.New("font missing")
}

func (failingRenderer) MonthlyBars([]core.MonthTotals) ([]byte, error) {
	return nil, charts.ErrNoData
}

func TestChartRenderFailure(t *testing.T) {
	svc := services.NewTransactionService(memory.New(), nil, time.Minute)
	srv := NewServer(":0", svc, failingRenderer{}, Options{})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rr := do(t, srv, http.MethodGet, "/charts/categories.png", "", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = do(t, srv, http.MethodGet, "/charts/monthly.png", "", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMutationsAreRateLimited(t *testing.T) {
	svc := services.NewTransactionService(memory.New(), nil, time.Minute)
	srv := NewServer(":0", svc, charts.NewPNGRenderer(0, 0), Options{RateLimitPerMinute: 1})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	body := `{"date":"2025-01-15","category":"Food","type":"EXPENSE","amount":1}`
	rr := do(t, srv, http.MethodPost, "/api/transactions", "application/json", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/transactions", "application/json", body)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/transactions", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
}
