package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
)

// Store keeps transactions in process memory. It enforces the same
// constraints as the SQLite schema so the two backends are interchangeable.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

func New() *Store {
	return &Store{nextID: 1}
}

// NewWithTransactions seeds the store, assigning ids in slice order.
func NewWithTransactions(txs []core.Transaction) (*Store, error) {
	s := New()
	for _, tx := range txs {
		if _, err := s.Insert(context.Background(), tx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Insert stores the transaction and returns its id.
func (s *Store) Insert(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Type.Validate(); err != nil {
		return 0, fmt.Errorf("insert transaction: %w: %w", core.ErrStorageOperationFailed, err)
	}
	if !core.ValidAmount(tx.Amount) {
		return 0, fmt.Errorf("insert transaction: %w: %w", core.ErrStorageOperationFailed, core.ErrInvalidAmount)
	}
	if tx.Date.IsZero() || tx.Category == "" {
		return 0, fmt.Errorf("insert transaction: %w: %w", core.ErrStorageOperationFailed, core.ErrMissingRequiredField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextID
	s.nextID++
	s.items = append(s.items, tx)
	return tx.ID, nil
}

func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// List returns a copy ordered by date then id, both descending.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction{}, s.items...)
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.items {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("get transaction: id %d: %w", id, core.ErrNotFound)
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.items)), nil
}

// MonthlyIncomeVsExpense computes the monthly totals in memory.
func (s *Store) MonthlyIncomeVsExpense(ctx context.Context) ([]core.MonthTotals, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.MonthlyTotals(all), nil
}

func (s *Store) Close() error {
	return nil
}
