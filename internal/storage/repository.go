package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

// dsnPragmas are applied by the driver to every new connection.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// SQLiteRepository is the durable transaction store. Every operation acquires
// its own connection and releases it before returning.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteRepository opens (creating if needed) the database file at dbPath
// and migrates the schema. Any failure is reported as ErrStorageUnavailable.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w: %w", core.ErrStorageUnavailable, err)
	}

	dsn := dbPath + dsnPragmas
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w: %w", core.ErrStorageUnavailable, err)
	}
	// SQLite has a single writer; one connection keeps calls strictly serial.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %w", core.ErrStorageUnavailable, err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w: %w", core.ErrStorageUnavailable, err)
	}

	slog.Info("SQLite store ready", "path", dbPath)

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// withConn runs fn on a connection scoped to this call.
func (r *SQLiteRepository) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire connection: %w: %w", op, core.ErrStorageOperationFailed, err)
	}
	defer conn.Close()

	if err := fn(conn); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w: %w", op, core.ErrStorageOperationFailed, err)
	}
	return nil
}

// Insert implements ledger.TransactionWriter. Only the schema constraints are
// enforced here.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) (int64, error) {
	var id int64
	err := r.withConn(ctx, "insert transaction", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertTransactionSQL,
			tx.Date.String(),
			sql.NullString{String: tx.Description, Valid: tx.Description != ""},
			tx.Category,
			string(tx.Type),
			tx.Amount,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"date", tx.Date.String(),
		"category", tx.Category,
		"type", tx.Type,
		"amount", tx.Amount)

	return id, nil
}

// DeleteByID implements ledger.TransactionDeleter. Deleting an id that does
// not exist is not an error.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	var affected int64
	err := r.withConn(ctx, "delete transaction", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, deleteTransactionSQL, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id, "rows_affected", affected)
	return nil
}

// List implements ledger.TransactionLister: newest date first, and among rows
// of the same date the most recently inserted first.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.withConn(ctx, "list transactions", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, listTransactionsSQL)
		if err != nil {
			return err
		}
		out, err = scanAll(rows, scanTransaction)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single transaction or ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	var tx core.Transaction
	err := r.withConn(ctx, "get transaction", func(conn *sql.Conn) error {
		var err error
		tx, err = scanTransaction(conn.QueryRowContext(ctx, getTransactionSQL, id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("id %d: %w", id, core.ErrNotFound)
		}
		return err
	})
	return tx, err
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.withConn(ctx, "count transactions", func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, countTransactionsSQL).Scan(&n)
	})
	return n, err
}

// MonthlyIncomeVsExpense implements ledger.MonthlyReader. The grouping is done
// by SQLite; months are ascending and an empty table yields an empty slice.
func (r *SQLiteRepository) MonthlyIncomeVsExpense(ctx context.Context) ([]core.MonthTotals, error) {
	out := []core.MonthTotals{}
	err := r.withConn(ctx, "monthly income vs expense", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, monthlyIncomeVsExpenseSQL)
		if err != nil {
			return err
		}
		out, err = scanAll(rows, scanMonthTotals)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
