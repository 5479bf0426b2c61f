package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
)

type fakeWallets struct {
	byUser  map[uuid.UUID]*domain.Wallet
	locked  []uuid.UUID
	updates int
}

func (f *fakeWallets) Ensure(_ context.Context, _ repository.Querier, userID uuid.UUID) error {
	if _, ok := f.byUser[userID]; !ok {
		f.byUser[userID] = &domain.Wallet{ID: uuid.New(), UserID: userID, Currency: domain.CurrencyUSD}
	}
	return nil
}

func (f *fakeWallets) GetByUserForUpdate(_ context.Context, _ *sql.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	f.locked = append(f.locked, userID)
	w, ok := f.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWallets) UpdateBalance(_ context.Context, _ *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error {
	for _, w := range f.byUser {
		if w.ID == id {
			if w.Version != newVersion-1 {
				return domain.ErrVersionConflict
			}
			w.Balance = newBalance
			w.Version = newVersion
			f.updates++
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeEntries struct {
	created []*domain.Transaction
}

func (f *fakeEntries) Create(_ context.Context, _ *sql.Tx, t *domain.Transaction) error {
	f.created = append(f.created, t)
	return nil
}

func newTestLedger(wallets ...*domain.Wallet) (*Ledger, *fakeWallets, *fakeEntries) {
	fw := &fakeWallets{byUser: make(map[uuid.UUID]*domain.Wallet)}
	for _, w := range wallets {
		fw.byUser[w.UserID] = w
	}
	fe := &fakeEntries{}
	return New(fw, fe), fw, fe
}

func wallet(balance string) *domain.Wallet {
	return &domain.Wallet{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Balance:  decimal.RequireFromString(balance),
		Currency: domain.CurrencyUSD,
	}
}

func TestDebit(t *testing.T) {
	ctx := context.Background()
	w := wallet("500")
	l, fw, fe := newTestLedger(w)

	locked, err := l.Lock(ctx, nil, w.UserID)
	require.NoError(t, err)

	entry, err := l.Debit(ctx, nil, locked, Posting{
		Type:        domain.TransactionTypeBookingPayment,
		Amount:      decimal.NewFromInt(300),
		ReferenceID: "BOOKING_x",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DirectionDebit, entry.Direction)
	assert.True(t, entry.BalanceBefore.Equal(decimal.NewFromInt(500)))
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(200)))
	assert.True(t, locked.Balance.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int64(1), locked.Version)
	assert.True(t, fw.byUser[w.UserID].Balance.Equal(decimal.NewFromInt(200)))
	assert.Len(t, fe.created, 1)
}

func TestDebit_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	w := wallet("100")
	l, fw, fe := newTestLedger(w)

	locked, err := l.Lock(ctx, nil, w.UserID)
	require.NoError(t, err)

	_, err = l.Debit(ctx, nil, locked, Posting{
		Type:   domain.TransactionTypeWithdrawal,
		Amount: decimal.RequireFromString("100.01"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Zero(t, fw.updates)
	assert.Empty(t, fe.created)
}

func TestPost_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	w := wallet("100")
	l, _, fe := newTestLedger(w)

	_, err := l.Credit(ctx, nil, w, Posting{Type: domain.TransactionTypeDeposit, Amount: decimal.Zero})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Empty(t, fe.created)
}

func TestCredit_RejectsBalanceOverflow(t *testing.T) {
	ctx := context.Background()
	w := wallet("9000000000000.00")
	l, fw, fe := newTestLedger(w)

	_, err := l.Credit(ctx, nil, w, Posting{
		Type:   domain.TransactionTypeDeposit,
		Amount: decimal.RequireFromString("9000000000000.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Zero(t, fw.updates)
	assert.Empty(t, fe.created)

	_, err = l.Credit(ctx, nil, w, Posting{
		Type:   domain.TransactionTypeDeposit,
		Amount: decimal.RequireFromString("999999999999.99"),
	})
	require.NoError(t, err, "largest balance that fits is accepted")
	assert.Equal(t, "9999999999999.99", w.Balance.StringFixed(2))
}

func TestCredit_SequentialPostingsOnSameWallet(t *testing.T) {
	ctx := context.Background()
	w := wallet("0")
	l, _, fe := newTestLedger(w)

	locked, err := l.EnsureAndLock(ctx, nil, w.UserID)
	require.NoError(t, err)

	for range 3 {
		_, err := l.Credit(ctx, nil, locked, Posting{
			Type:     domain.TransactionTypeDeposit,
			Amount:   decimal.RequireFromString("10.25"),
			Metadata: map[string]any{"source": "test"},
		})
		require.NoError(t, err)
	}

	assert.True(t, locked.Balance.Equal(decimal.RequireFromString("30.75")))
	assert.Equal(t, int64(3), locked.Version)
	require.Len(t, fe.created, 3)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(fe.created[0].Metadata, &meta))
	assert.Equal(t, "test", meta["source"])
}

func TestEnsureAndLock_CreatesMissingWallet(t *testing.T) {
	l, fw, _ := newTestLedger()
	userID := uuid.New()

	w, err := l.EnsureAndLock(context.Background(), nil, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, w.UserID)
	assert.True(t, w.Balance.IsZero())
	assert.Contains(t, fw.byUser, userID)
}

func TestLockPair(t *testing.T) {
	ctx := context.Background()
	a, b := wallet("1"), wallet("2")
	l, fw, _ := newTestLedger(a, b)

	gotA, gotB, err := l.LockPair(ctx, nil, a.UserID, b.UserID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, gotA.ID)
	assert.Equal(t, b.ID, gotB.ID)

	firstOrder := append([]uuid.UUID(nil), fw.locked...)
	fw.locked = nil

	_, _, err = l.LockPair(ctx, nil, b.UserID, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, firstOrder, fw.locked, "lock order must not depend on argument order")

	missing := uuid.New()
	gotA, gotMissing, err := l.LockPair(ctx, nil, a.UserID, missing)
	require.NoError(t, err)
	assert.NotNil(t, gotA)
	assert.Nil(t, gotMissing)
}
