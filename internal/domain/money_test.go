package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "one cent", amount: "0.01"},
		{name: "whole", amount: "500"},
		{name: "two places", amount: "199.99"},
		{name: "trailing zeros", amount: "10.500"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5", wantErr: true},
		{name: "sub-cent", amount: "0.001", wantErr: true},
		{name: "too large", amount: "10000000000000", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckAmount(decimal.RequireFromString(tc.amount))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckBookingAmount(t *testing.T) {
	assert.NoError(t, CheckBookingAmount(decimal.Zero))
	assert.NoError(t, CheckBookingAmount(decimal.RequireFromString("300.00")))
	assert.ErrorIs(t, CheckBookingAmount(decimal.RequireFromString("-0.01")), ErrInvalidAmount)
	assert.ErrorIs(t, CheckBookingAmount(decimal.RequireFromString("1.005")), ErrInvalidAmount)
}

func TestTransactionSigned(t *testing.T) {
	amount := decimal.NewFromInt(300)

	debit := Transaction{Direction: DirectionDebit, Amount: amount}
	credit := Transaction{Direction: DirectionCredit, Amount: amount}

	assert.True(t, debit.Signed().Equal(decimal.NewFromInt(-300)))
	assert.True(t, credit.Signed().Equal(amount))
}
