package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/service/ledger"
)

// Deposit credits the user's wallet, creating it if needed, and returns the
// new balance.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := domain.CheckAmount(amount); err != nil {
		return decimal.Zero, fmt.Errorf("Deposit: %w", err)
	}

	var entry *domain.Transaction
	var balance decimal.Decimal
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		w, err := s.ledger.EnsureAndLock(ctx, tx, userID)
		if err != nil {
			return err
		}
		entry, err = s.ledger.Credit(ctx, tx, w, ledger.Posting{
			Type:        domain.TransactionTypeDeposit,
			Amount:      amount,
			Description: "Wallet deposit",
			ReferenceID: domain.DepositReference(uuid.New()),
		})
		balance = w.Balance
		return err
	})
	if err != nil {
		return decimal.Zero, wrapTxError("Deposit", err)
	}

	logging.FromContext(ctx).Info("wallet deposit",
		"user_id", userID,
		"transaction_id", entry.ID,
		"amount", amount.StringFixed(2),
	)
	s.shipLog(ctx, "deposit", userID, map[string]any{
		"transaction_id": entry.ID,
		"amount":         amount.StringFixed(2),
		"new_balance":    balance.StringFixed(2),
	})

	return balance, nil
}

// Withdraw debits the user's wallet. A user without a wallet has nothing to
// withdraw.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := domain.CheckAmount(amount); err != nil {
		return decimal.Zero, fmt.Errorf("Withdraw: %w", err)
	}

	var entry *domain.Transaction
	var balance decimal.Decimal
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		w, err := s.ledger.Lock(ctx, tx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInsufficientBalance
		}
		if err != nil {
			return err
		}
		entry, err = s.ledger.Debit(ctx, tx, w, ledger.Posting{
			Type:        domain.TransactionTypeWithdrawal,
			Amount:      amount,
			Description: "Wallet withdrawal",
			ReferenceID: domain.WithdrawalReference(uuid.New()),
		})
		balance = w.Balance
		return err
	})
	if err != nil {
		return decimal.Zero, wrapTxError("Withdraw", err)
	}

	logging.FromContext(ctx).Info("wallet withdrawal",
		"user_id", userID,
		"transaction_id", entry.ID,
		"amount", amount.StringFixed(2),
	)
	s.shipLog(ctx, "withdrawal", userID, map[string]any{
		"transaction_id": entry.ID,
		"amount":         amount.StringFixed(2),
		"new_balance":    balance.StringFixed(2),
	})

	return balance, nil
}
