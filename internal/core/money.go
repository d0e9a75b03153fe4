// Package core holds the ledger's domain types and the money arithmetic
// shared by every layer. Amounts are fixed-point decimals with two
// fractional digits; floating point is never used for balance math.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount string into a decimal with at
// most two fractional digits. Both dot (12.34) and comma (12,34) separators
// are accepted; the third decimal place is rounded half-up. Only strictly
// positive amounts are valid.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidTransaction
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidTransaction
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidTransaction
	}
	return d, nil
}

// ValidateAmount rejects amounts that are not strictly positive or carry
// more than two fractional digits.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidTransaction
	}
	if !d.Equal(d.Round(2)) {
		return ErrInvalidTransaction
	}
	return nil
}

// Cents converts a two-decimal amount to integer cents for storage.
// The amount must already satisfy ValidateAmount or be a balance produced
// by ledger arithmetic (always two decimals).
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

// FromCents converts stored integer cents back to a decimal amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
