package ledger

import (
	"context"

	"expensetracker/internal/core"
)

// Ports implemented by the storage backends.
type (
	TransactionWriter interface {
		Insert(ctx context.Context, tx core.Transaction) (id int64, err error)
	}

	// TransactionDeleter removes a row; an unknown id is not an error.
	TransactionDeleter interface {
		DeleteByID(ctx context.Context, id int64) error
	}

	// TransactionLister returns every row, newest date first.
	TransactionLister interface {
		List(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionGetter interface {
		Get(ctx context.Context, id int64) (core.Transaction, error)
	}

	// MonthlyReader provides the per-month income and expense totals.
	MonthlyReader interface {
		MonthlyIncomeVsExpense(ctx context.Context) ([]core.MonthTotals, error)
	}

	// Store is everything a backend offers.
	Store interface {
		TransactionWriter
		TransactionDeleter
		TransactionLister
		TransactionGetter
		MonthlyReader
		Count(ctx context.Context) (int64, error)
		Close() error
	}
)
