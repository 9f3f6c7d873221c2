package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

func TestMemoryStoreInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	d1 := core.NewDate(2025, 1, 1)
	d2 := core.NewDate(2025, 1, 2)
	for _, tx := range []core.Transaction{
		{Date: d1, Category: "Food", Type: core.Expense, Amount: 1},
		{Date: d2, Category: "Food", Type: core.Expense, Amount: 2},
		{Date: d2, Category: "Food", Type: core.Expense, Amount: 3},
	} {
		if _, err := s.Insert(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != 3 || list[1].ID != 2 || list[2].ID != 1 {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestMemoryStoreConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()

	bads := []core.Transaction{
		{Date: core.NewDate(2025, 1, 1), Category: "Food", Type: "REFUND", Amount: 5},
		{Date: core.NewDate(2025, 1, 1), Category: "Food", Type: core.Expense, Amount: -5},
		{Date: core.NewDate(2025, 1, 1), Category: "Food", Type: core.Expense, Amount: math.Inf(1)},
	}
	for i, tx := range bads {
		if _, err := s.Insert(ctx, tx); !errors.Is(err, core.ErrStorageOperationFailed) {
			t.Fatalf("case %d expected ErrStorageOperationFailed, got %v", i, err)
		}
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d rows", n)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewWithTransactions([]core.Transaction{
		{Date: core.NewDate(2025, 1, 1), Category: "Food", Type: core.Expense, Amount: 1},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.DeleteByID(ctx, 42); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}

	if err := s.DeleteByID(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	id, _ := s.Insert(ctx, core.Transaction{Date: core.NewDate(2025, 1, 1), Category: "Food", Type: core.Expense, Amount: 1})
	if id != 2 {
		t.Fatalf("expected id 2 after delete, got %d", id)
	}
}

func TestMemoryStoreMonthly(t *testing.T) {
	s, err := NewWithTransactions([]core.Transaction{
		{Date: core.NewDate(2025, 1, 15), Category: "Salary", Type: core.Income, Amount: 100},
		{Date: core.NewDate(2025, 1, 20), Category: "Food", Type: core.Expense, Amount: 40},
		{Date: core.NewDate(2025, 2, 1), Category: "Food", Type: core.Expense, Amount: 10},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := s.MonthlyIncomeVsExpense(context.Background())
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	want := []core.MonthTotals{
		{Month: "2025-01", Income: 100, Expense: 40},
		{Month: "2025-02", Income: 0, Expense: 10},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected totals: %+v", got)
	}
}
