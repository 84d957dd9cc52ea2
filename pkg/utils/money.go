package utils

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept on stored amounts
const MoneyScale = 2

var ErrInvalidAmount = errors.New("amount must be a positive decimal")

// ParsePositiveAmount parses a decimal string and rejects zero, negative, or malformed values
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(MoneyScale), nil
}

// SumAmounts adds a list of amounts
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
