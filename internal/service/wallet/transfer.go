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

type TransferRequest struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	Amount     decimal.Decimal
}

// Transfer moves money between two users' wallets and returns the sender's
// new balance. The recipient's wallet is created on demand.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (decimal.Decimal, error) {
	log := logging.FromContext(ctx)

	if err := validateTransfer(req); err != nil {
		return decimal.Zero, fmt.Errorf("Transfer: %w", err)
	}

	if _, err := s.users.GetByID(ctx, req.ToUserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("Transfer: %w", domain.ErrRecipientNotFound)
		}
		return decimal.Zero, fmt.Errorf("Transfer: %w", err)
	}

	transferID := uuid.New()
	var balance decimal.Decimal
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		balance, err = s.executeTransfer(ctx, tx, transferID, req)
		return err
	})
	if err != nil {
		return decimal.Zero, wrapTxError("Transfer", err)
	}

	log.Info("wallet transfer completed",
		"transfer_id", transferID,
		"from_user_id", req.FromUserID,
		"to_user_id", req.ToUserID,
		"amount", req.Amount.StringFixed(2),
	)
	s.shipLog(ctx, "transfer", req.FromUserID, map[string]any{
		"transfer_id": transferID,
		"to_user_id":  req.ToUserID,
		"amount":      req.Amount.StringFixed(2),
		"new_balance": balance.StringFixed(2),
	})

	return balance, nil
}

func validateTransfer(req TransferRequest) error {
	if err := domain.CheckAmount(req.Amount); err != nil {
		return fmt.Errorf("validateTransfer: %w", err)
	}
	if req.FromUserID == req.ToUserID {
		return fmt.Errorf("validateTransfer: %w", domain.ErrSelfTransfer)
	}
	return nil
}

func (s *Service) executeTransfer(ctx context.Context, tx *sql.Tx, transferID uuid.UUID, req TransferRequest) (decimal.Decimal, error) {
	// Only the recipient is created lazily; a sender without a wallet has
	// nothing to send.
	if err := s.wallets.Ensure(ctx, tx, req.ToUserID); err != nil {
		return decimal.Zero, fmt.Errorf("executeTransfer: %w", err)
	}

	sender, recipient, err := s.ledger.LockPair(ctx, tx, req.FromUserID, req.ToUserID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("executeTransfer: %w", err)
	}
	if sender == nil {
		return decimal.Zero, fmt.Errorf("executeTransfer: sender has no wallet: %w", domain.ErrInsufficientBalance)
	}
	if recipient == nil {
		return decimal.Zero, fmt.Errorf("executeTransfer: recipient wallet missing after ensure")
	}

	if _, err := s.ledger.Debit(ctx, tx, sender, ledger.Posting{
		Type:        domain.TransactionTypeTransfer,
		Amount:      req.Amount,
		Description: fmt.Sprintf("Transfer to user %s", req.ToUserID),
		ReferenceID: domain.TransferOutReference(transferID),
		Metadata: map[string]any{
			"transfer_id":            transferID,
			"counterparty_user_id":   req.ToUserID,
			"counterparty_wallet_id": recipient.ID,
		},
	}); err != nil {
		return decimal.Zero, fmt.Errorf("executeTransfer: debit sender: %w", err)
	}

	if _, err := s.ledger.Credit(ctx, tx, recipient, ledger.Posting{
		Type:        domain.TransactionTypeTransfer,
		Amount:      req.Amount,
		Description: fmt.Sprintf("Transfer from user %s", req.FromUserID),
		ReferenceID: domain.TransferInReference(transferID),
		Metadata: map[string]any{
			"transfer_id":            transferID,
			"counterparty_user_id":   req.FromUserID,
			"counterparty_wallet_id": sender.ID,
		},
	}); err != nil {
		return decimal.Zero, fmt.Errorf("executeTransfer: credit recipient: %w", err)
	}

	return sender.Balance, nil
}
