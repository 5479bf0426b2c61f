// Package ledger owns every wallet balance mutation. A balance only changes
// together with the append-only transaction row that explains it, inside the
// caller's database transaction.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
)

type walletRepo interface {
	Ensure(ctx context.Context, q repository.Querier, userID uuid.UUID) error
	GetByUserForUpdate(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
}

// Posting describes one ledger line before it is applied.
type Posting struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	ReferenceID string
	Metadata    map[string]any
}

type Ledger struct {
	wallets walletRepo
	entries transactionRepo
}

func New(wallets walletRepo, entries transactionRepo) *Ledger {
	return &Ledger{wallets: wallets, entries: entries}
}

// Lock returns the user's wallet locked for the rest of tx. It returns
// domain.ErrNotFound when the user has no wallet yet.
func (l *Ledger) Lock(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	w, err := l.wallets.GetByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("Lock: %w", err)
	}
	return w, nil
}

// EnsureAndLock lazily creates the user's wallet and locks it.
func (l *Ledger) EnsureAndLock(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	if err := l.wallets.Ensure(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("EnsureAndLock: %w", err)
	}
	w, err := l.wallets.GetByUserForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("EnsureAndLock: %w", err)
	}
	return w, nil
}

// LockPair locks the wallets of two users in a stable order so concurrent
// transfers in opposite directions cannot deadlock. A missing wallet comes
// back as nil.
func (l *Ledger) LockPair(ctx context.Context, tx *sql.Tx, a, b uuid.UUID) (*domain.Wallet, *domain.Wallet, error) {
	ids := []uuid.UUID{a, b}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	locked := make(map[uuid.UUID]*domain.Wallet, 2)
	for _, id := range ids {
		w, err := l.wallets.GetByUserForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, nil, fmt.Errorf("LockPair: %w", err)
		}
		locked[id] = w
	}
	return locked[a], locked[b], nil
}

// Debit takes p.Amount out of a locked wallet. The wallet is updated in place.
func (l *Ledger) Debit(ctx context.Context, tx *sql.Tx, w *domain.Wallet, p Posting) (*domain.Transaction, error) {
	if !w.CanCover(p.Amount) {
		return nil, fmt.Errorf("Debit: %w", domain.ErrInsufficientBalance)
	}
	return l.post(ctx, tx, w, domain.DirectionDebit, p)
}

// Credit adds p.Amount to a locked wallet. The wallet is updated in place.
// The resulting balance must still fit the balance column.
func (l *Ledger) Credit(ctx context.Context, tx *sql.Tx, w *domain.Wallet, p Posting) (*domain.Transaction, error) {
	if w.Balance.Add(p.Amount).GreaterThanOrEqual(domain.MaxAmount) {
		return nil, fmt.Errorf("Credit: balance would exceed %s: %w", domain.MaxAmount, domain.ErrInvalidAmount)
	}
	return l.post(ctx, tx, w, domain.DirectionCredit, p)
}

func (l *Ledger) post(ctx context.Context, tx *sql.Tx, w *domain.Wallet, dir domain.Direction, p Posting) (*domain.Transaction, error) {
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("post: %w", domain.ErrInvalidAmount)
	}

	entry := &domain.Transaction{
		ID:            uuid.New(),
		WalletID:      w.ID,
		Type:          p.Type,
		Direction:     dir,
		Amount:        p.Amount,
		Currency:      w.Currency,
		BalanceBefore: w.Balance,
		Description:   p.Description,
		ReferenceID:   p.ReferenceID,
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	entry.BalanceAfter = w.Balance.Add(entry.Signed())

	if p.Metadata != nil {
		meta, err := json.Marshal(p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("post: metadata: %w", err)
		}
		entry.Metadata = meta
	}

	if err := l.wallets.UpdateBalance(ctx, tx, w.ID, entry.BalanceAfter, w.Version+1); err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	if err := l.entries.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}

	w.Balance = entry.BalanceAfter
	w.Version++
	return entry, nil
}
