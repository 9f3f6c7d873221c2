package storage

const (
	insertTransactionSQL = `INSERT INTO transactions (date, description, category, type, amount)
VALUES (?, ?, ?, ?, ?)`

	deleteTransactionSQL = `DELETE FROM transactions WHERE id = ?`

	selectTransactionColumns = `SELECT id, date, description, category, type, amount FROM transactions`

	listTransactionsSQL = selectTransactionColumns + ` ORDER BY date DESC, id DESC`

	getTransactionSQL = selectTransactionColumns + ` WHERE id = ?`

	countTransactionsSQL = `SELECT COUNT(*) FROM transactions`

	// TOTAL yields 0.0 rather than NULL for a month with no row of a type.
	// The inner ORDER BY feeds rows to the sums in (date, id) order, the same
	// order the in-memory aggregator uses.
	monthlyIncomeVsExpenseSQL = `SELECT strftime('%Y-%m', date) AS month,
       TOTAL(CASE WHEN type = 'INCOME' THEN amount END) AS income,
       TOTAL(CASE WHEN type = 'EXPENSE' THEN amount END) AS expense
FROM (SELECT date, type, amount FROM transactions ORDER BY date, id)
GROUP BY month
ORDER BY month`
)
