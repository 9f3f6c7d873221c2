// Package aggregate derives the chart datasets from an in-memory list of
// transactions. Every function is pure and total: an empty input yields an
// empty result, never an error.
package aggregate

import (
	"math"
	"sort"

	"expensetracker/internal/core"
)

// CategoryExpenseTotals sums the amount of every EXPENSE transaction per
// category. INCOME rows are ignored.
func CategoryExpenseTotals(txs []core.Transaction) core.CategoryTotals {
	sums := make(map[string]*compensatedSum)
	for _, tx := range chronological(txs) {
		if tx.Type != core.Expense {
			continue
		}
		s, ok := sums[tx.Category]
		if !ok {
			s = &compensatedSum{}
			sums[tx.Category] = s
		}
		s.add(tx.Amount)
	}

	out := make(core.CategoryTotals, len(sums))
	for cat, s := range sums {
		out[cat] = s.value()
	}
	return out
}

// MonthlyTotals groups transactions by YYYY-MM and sums income and expense
// separately. Months are returned in ascending order; a month with no row of
// one type reports 0 for it.
func MonthlyTotals(txs []core.Transaction) []core.MonthTotals {
	type bucket struct {
		income, expense compensatedSum
	}
	buckets := make(map[string]*bucket)
	var months []string

	for _, tx := range chronological(txs) {
		key := tx.Date.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			months = append(months, key)
		}
		switch tx.Type {
		case core.Income:
			b.income.add(tx.Amount)
		case core.Expense:
			b.expense.add(tx.Amount)
		}
	}

	sort.Strings(months)
	out := make([]core.MonthTotals, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		out = append(out, core.MonthTotals{
			Month:   m,
			Income:  b.income.value(),
			Expense: b.expense.value(),
		})
	}
	return out
}

// SortedCategories flattens the totals into a slice ordered by amount
// descending, then by name.
func SortedCategories(totals core.CategoryTotals) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// chronological returns a copy ordered by date then id ascending, the order
// rows are fed to SQLite's aggregate functions.
func chronological(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// compensatedSum is Kahan-Babuska-Neumaier summation, the algorithm SQLite
// uses for SUM and TOTAL over REAL values.
type compensatedSum struct {
	sum float64
	err float64
}

func (c *compensatedSum) add(v float64) {
	t := c.sum + v
	if math.Abs(c.sum) > math.Abs(v) {
		c.err += (c.sum - t) + v
	} else {
		c.err += (v - t) + c.sum
	}
	c.sum = t
}

func (c *compensatedSum) value() float64 {
	return c.sum + c.err
}
