// Package http exposes the transaction service as a JSON API and serves the
// rendered dashboard charts.
package http

import (
	"context"
	"net/http"
	"time"

	"expensetracker/internal/charts"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
)

// TransactionService is the subset of services.TransactionService the
// handlers depend on.
type TransactionService interface {
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	Transaction(ctx context.Context, id int64) (core.Transaction, error)
	CategoryBreakdown(ctx context.Context) (core.CategoryTotals, error)
	MonthlyComparison(ctx context.Context) ([]core.MonthTotals, error)
	Ready(ctx context.Context) error
}

// Options tunes the middleware stack.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
}

type Server struct {
	*http.Server
	svc      TransactionService
	renderer charts.Renderer
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
}

// NewServer wires routes and middleware. The returned server owns a rate
// limiter goroutine; Shutdown releases it.
func NewServer(addr string, svc TransactionService, renderer charts.Renderer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	resolver := security.NewClientIPResolver()
	s := &Server{
		svc:      svc,
		renderer: renderer,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(logger, resolver.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/categories", handleCategories)

	mux.HandleFunc("GET /api/charts/categories", s.handleCategoryTotals)
	mux.HandleFunc("GET /api/charts/monthly", s.handleMonthlyTotals)
	mux.HandleFunc("GET /charts/categories.png", s.handleCategoryChart)
	mux.HandleFunc("GET /charts/monthly.png", s.handleMonthlyChart)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.limiter.Middleware(resolver.ClientIP)(handler)
	handler = security.NoStore(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// Metrics returns request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ready(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
