package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Type = "INCOME"
	Expense Type = "EXPENSE"
)

// DateLayout is the on-disk and wire format of a transaction date.
const DateLayout = "2006-01-02"

// MonthLayout is the grouping key used by the monthly aggregates.
const MonthLayout = "2006-01"

// DefaultCategories are the suggestions offered to the user. The store accepts
// any non-empty label.
var DefaultCategories = []string{"Food", "Transport", "Entertainment", "Bills", "Shopping", "Other"}

type (
	Type string

	Date struct {
		time.Time
	}

	// Transaction is a single recorded money movement. ID is zero until the
	// store assigns one.
	Transaction struct {
		ID          int64
		Date        Date
		Description string
		Category    string
		Type        Type
		Amount      float64
	}

	// TransactionInput is the raw, unvalidated form a presenter collects.
	TransactionInput struct {
		Date        string
		Description string
		Category    string
		Type        string
		Amount      string
	}
)

var (
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrStorageOperationFailed = errors.New("storage operation failed")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidType            = errors.New("invalid transaction type")
	ErrInvalidDate            = errors.New("invalid date")
	ErrNotFound               = errors.New("transaction not found")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket the date belongs to.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParseType accepts the two known types, case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t Type) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (t Type) String() string {
	return string(t)
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrMissingRequiredField
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if !ValidAmount(tx.Amount) {
		return ErrInvalidAmount
	}
	return nil
}

// Transaction converts the raw form into a Transaction. Every required field
// is checked for presence before any of them is parsed, so a half-filled form
// reports ErrMissingRequiredField rather than a parse error.
func (in TransactionInput) Transaction() (Transaction, error) {
	for _, v := range []string{in.Date, in.Category, in.Type, in.Amount} {
		if strings.TrimSpace(v) == "" {
			return Transaction{}, ErrMissingRequiredField
		}
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		return Transaction{}, err
	}
	typ, err := ParseType(in.Type)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Type:        typ,
		Amount:      amount,
	}, nil
}
