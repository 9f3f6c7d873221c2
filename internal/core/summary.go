package core

// CategoryTotals maps a category label to the summed expense amount.
type CategoryTotals map[string]float64

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// MonthTotals is the income and expense sum of one calendar month.
type MonthTotals struct {
	Month   string  `json:"month"` // YYYY-MM
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}
