package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

// EventPublisher announces committed changes. Implemented by *amqp.Client.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind amqp.EventKind, transactionID int64) error
}

// TransactionService is the presenter-facing API: it validates raw input,
// talks to the store, and keeps derived data consistent after mutations.
type TransactionService struct {
	store     ledger.Store
	publisher EventPublisher

	monthly *cache.Slot[[]core.MonthTotals]
}

// NewTransactionService wires the service. publisher may be nil, in which case
// no events are emitted.
func NewTransactionService(store ledger.Store, publisher EventPublisher, cacheTTL time.Duration) *TransactionService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		monthly:   cache.NewSlot[[]core.MonthTotals](cacheTTL),
	}
}

// Cache exposes the aggregate cache so it can be registered for cleanup.
func (s *TransactionService) Cache() *cache.Slot[[]core.MonthTotals] {
	return s.monthly
}

// AddTransaction validates the form and persists it. Validation failures wrap
// ErrMissingRequiredField, ErrInvalidAmount, ErrInvalidType or ErrInvalidDate
// and never reach the store.
func (s *TransactionService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := in.Transaction()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	id, err := s.store.Insert(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id
	s.invalidate()

	slog.InfoContext(ctx, "Transaction created",
		"id", id,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount)

	s.publish(ctx, amqp.EventCreated, id)
	return tx, nil
}

// DeleteTransaction removes the row if it exists.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.invalidate()

	s.publish(ctx, amqp.EventDeleted, id)
	return nil
}

// ListTransactions always re-reads the store.
func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Transaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// CategoryBreakdown returns expense totals per category. An empty map means
// there is nothing to chart.
func (s *TransactionService) CategoryBreakdown(ctx context.Context) (core.CategoryTotals, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.CategoryExpenseTotals(txs), nil
}

// MonthlyComparison returns the store's monthly aggregate, cached until the
// next mutation or TTL expiry.
func (s *TransactionService) MonthlyComparison(ctx context.Context) ([]core.MonthTotals, error) {
	cached, gen, ok := s.monthly.Get()
	if ok {
		slog.DebugContext(ctx, "Monthly totals cache hit", "months", len(cached))
		return append([]core.MonthTotals{}, cached...), nil
	}

	months, err := s.store.MonthlyIncomeVsExpense(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly income vs expense: %w", err)
	}

	if !s.monthly.SetIfGeneration(gen, append([]core.MonthTotals{}, months...)) {
		slog.DebugContext(ctx, "Monthly totals changed during read, not caching")
	}
	return months, nil
}

func (s *TransactionService) invalidate() {
	s.monthly.Invalidate()
}

func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, id int64) {
	if s.publisher == nil {
		return
	}
	// The row is committed; a lost event only delays the chart worker.
	if err := s.publisher.PublishTransactionEvent(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", kind, "id", id, "error", err)
	}
}

// Ready reports whether the store answers queries.
func (s *TransactionService) Ready(ctx context.Context) error {
	if _, err := s.store.Count(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

// Close closes the store and the publisher if it holds resources.
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
