package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/charts"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := parseTransactionInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.svc.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction recorded",
		log.NewFields().WithTransaction(tx).WithOperation(log.OpCreate).ToSlice()...)
	writeJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	tx, err := s.svc.Transaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

// handleDeleteTransaction answers 204 whether or not the row existed.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.DefaultCategories)
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.CategoryBreakdown(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	months, err := s.svc.MonthlyComparison(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.CategoryBreakdown(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeChart(w, r, func() ([]byte, error) { return s.renderer.CategoryPie(totals) })
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	months, err := s.svc.MonthlyComparison(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeChart(w, r, func() ([]byte, error) { return s.renderer.MonthlyBars(months) })
}

// writeChart answers 204 when there is nothing to draw.
func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, render func() ([]byte, error)) {
	img, err := render()
	if errors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Chart rendering failed", log.FieldError, err)
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
