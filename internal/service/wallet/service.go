package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
	"github.com/josh-kwaku/hotel-booking/internal/service/ledger"
)

const logSource = "wallet"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Conn() *sql.DB
}

type walletReader interface {
	Ensure(ctx context.Context, q repository.Querier, userID uuid.UUID) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
}

type transactionReader interface {
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
}

type userChecker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type ActivityLog interface {
	SendLog(ctx context.Context, level, message string, fields map[string]any, source string, userID uuid.UUID)
}

type Service struct {
	db           txRunner
	wallets      walletReader
	transactions transactionReader
	users        userChecker
	ledger       *ledger.Ledger
	activity     ActivityLog
}

func NewService(
	db txRunner,
	wallets walletReader,
	transactions transactionReader,
	users userChecker,
	l *ledger.Ledger,
	activity ActivityLog,
) *Service {
	return &Service{
		db:           db,
		wallets:      wallets,
		transactions: transactions,
		users:        users,
		ledger:       l,
		activity:     activity,
	}
}

// GetBalance returns the user's wallet, creating an empty one on first use.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	if err := s.wallets.Ensure(ctx, s.db.Conn(), userID); err != nil {
		return nil, fmt.Errorf("GetBalance: %w", err)
	}
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetBalance: %w", err)
	}
	return w, nil
}

// ListTransactions returns ledger entries newest first. A user without a
// wallet simply has none.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}

	entries, err := s.transactions.ListByWallet(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return entries, nil
}

func (s *Service) shipLog(ctx context.Context, action string, userID uuid.UUID, fields map[string]any) {
	if s.activity == nil {
		return
	}
	fields["action"] = action
	s.activity.SendLog(ctx, "info", "Transaction "+action, fields, logSource, userID)
}

var businessErrors = []error{
	domain.ErrInsufficientBalance,
	domain.ErrSelfTransfer,
	domain.ErrRecipientNotFound,
	domain.ErrInvalidAmount,
	domain.ErrValidationFailed,
}

func wrapTxError(op string, err error) error {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrTransactionAborted, err)
}
