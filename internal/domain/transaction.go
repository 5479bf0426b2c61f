package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdrawal     TransactionType = "withdrawal"
	TransactionTypeTransfer       TransactionType = "transfer"
	TransactionTypeBookingPayment TransactionType = "booking_payment"
	TransactionTypeRefund         TransactionType = "refund"
)

type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

type TransactionStatus string

const TransactionStatusCompleted TransactionStatus = "completed"

// Transaction is one immutable ledger entry against a wallet.
type Transaction struct {
	ID            uuid.UUID
	WalletID      uuid.UUID
	Type          TransactionType
	Direction     Direction
	Amount        decimal.Decimal
	Currency      Currency
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	ReferenceID   string
	Status        TransactionStatus
	Metadata      json.RawMessage
	CreatedAt     time.Time
}

// Signed returns the amount as it affects the wallet balance.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

func BookingPaymentReference(bookingID uuid.UUID) string {
	return fmt.Sprintf("BOOKING_%s", bookingID)
}

func RefundReference(bookingID uuid.UUID) string {
	return fmt.Sprintf("REFUND_%s", bookingID)
}

func DepositReference(id uuid.UUID) string {
	return fmt.Sprintf("DEPOSIT_%s", id)
}

func WithdrawalReference(id uuid.UUID) string {
	return fmt.Sprintf("WITHDRAW_%s", id)
}

func TransferOutReference(transferID uuid.UUID) string {
	return fmt.Sprintf("TRANSFER_OUT_%s", transferID)
}

func TransferInReference(transferID uuid.UUID) string {
	return fmt.Sprintf("TRANSFER_IN_%s", transferID)
}
