package storage

import (
	"database/sql"
	"fmt"

	"expensetracker/internal/core"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAll drains rows through decode and always closes them. The result is
// never nil.
func scanAll[T any](rows *sql.Rows, decode func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := decode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// scanTransaction is the single row-to-Transaction mapping for every read path.
func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date string
		desc sql.NullString
		typ  string
	)
	if err := s.Scan(&tx.ID, &date, &desc, &tx.Category, &typ, &tx.Amount); err != nil {
		return core.Transaction{}, err
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode date %q of transaction %d: %w", date, tx.ID, err)
	}
	tx.Date = d
	tx.Description = desc.String
	tx.Type = core.Type(typ)
	return tx, nil
}

func scanMonthTotals(s rowScanner) (core.MonthTotals, error) {
	var m core.MonthTotals
	if err := s.Scan(&m.Month, &m.Income, &m.Expense); err != nil {
		return core.MonthTotals{}, err
	}
	return m, nil
}
