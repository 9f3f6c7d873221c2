// Package core provides money parsing and handling utilities.
//
// This file contains the conversion between the text a user types into the
// amount field and the float64 the store persists as REAL.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user-entered text into a non-negative amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. The text
// is parsed as an exact decimal first, so inputs like "1e3" or "NaN" that
// strconv would accept are rejected. Zero is a legal amount; negative values
// are not, because the sign is carried by the transaction type.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> 0, nil
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
//
// Values too large for a float64 are rejected rather than stored as +Inf.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}

	f, _ := d.Float64()
	if !ValidAmount(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// ValidAmount reports whether a stored amount is finite and non-negative.
func ValidAmount(amount float64) bool {
	return amount >= 0 && !math.IsInf(amount, 1)
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
