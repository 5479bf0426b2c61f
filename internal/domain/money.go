package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// MaxAmount is the first value that no longer fits NUMERIC(15,2).
var MaxAmount = decimal.New(1, 13)

// CheckAmount validates a wallet movement: strictly positive, cents precision.
func CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("must be greater than zero: %w", ErrInvalidAmount)
	}
	return checkScale(amount)
}

// CheckBookingAmount allows zero-priced stays.
func CheckBookingAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("must not be negative: %w", ErrInvalidAmount)
	}
	return checkScale(amount)
}

func checkScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(moneyScale)) {
		return fmt.Errorf("at most %d decimal places: %w", moneyScale, ErrInvalidAmount)
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return fmt.Errorf("exceeds maximum: %w", ErrInvalidAmount)
	}
	return nil
}
