package wallet_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/hotel-booking/internal/clock"
	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
	"github.com/josh-kwaku/hotel-booking/internal/service/booking"
	"github.com/josh-kwaku/hotel-booking/internal/service/ledger"
	"github.com/josh-kwaku/hotel-booking/internal/service/wallet"
	"github.com/josh-kwaku/hotel-booking/internal/testutil"
)

func setupWalletService(t *testing.T, db *sql.DB) *wallet.Service {
	t.Helper()
	wallets := repository.NewWalletRepository(db)
	transactions := repository.NewTransactionRepository(db)
	return wallet.NewService(
		repository.NewDB(db),
		wallets,
		transactions,
		repository.NewUserRepository(db),
		ledger.New(wallets, transactions),
		nil,
	)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetBalance_CreatesWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	u := testutil.SeedTestUser(t, db, "a@test.com", "A")

	w, err := svc.GetBalance(context.Background(), u.ID)

	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())
	assert.Equal(t, domain.CurrencyUSD, w.Currency)
	_, ok := testutil.GetWalletBalance(t, db, u.ID)
	assert.True(t, ok)
}

func TestDeposit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	u := testutil.SeedTestUser(t, db, "a@test.com", "A")
	ctx := context.Background()

	balance, err := svc.Deposit(ctx, u.ID, amount("120.50"))
	require.NoError(t, err)
	assert.Equal(t, "120.50", balance.StringFixed(2))

	balance, err = svc.Deposit(ctx, u.ID, amount("79.50"))
	require.NoError(t, err)
	assert.Equal(t, "200.00", balance.StringFixed(2))

	assert.Equal(t, 2, testutil.CountTransactions(t, db, u.ID, domain.TransactionTypeDeposit))
	assert.True(t, testutil.LedgerSum(t, db, u.ID).Equal(amount("200")))

	_, err = svc.Deposit(ctx, u.ID, amount("0"))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = svc.Deposit(ctx, u.ID, amount("1.001"))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDeposit_BalanceCeiling(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	u := testutil.SeedTestUser(t, db, "a@test.com", "A")
	ctx := context.Background()

	_, err := svc.Deposit(ctx, u.ID, amount("9000000000000.00"))
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, u.ID, amount("9000000000000.00"))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.NotErrorIs(t, err, domain.ErrTransactionAborted)
	assert.Equal(t, 1, testutil.CountTransactions(t, db, u.ID, domain.TransactionTypeDeposit))
}

func TestWithdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	u := testutil.SeedTestUser(t, db, "a@test.com", "A")
	testutil.SeedTestWallet(t, db, u.ID, "100.00")
	ctx := context.Background()

	balance, err := svc.Withdraw(ctx, u.ID, amount("40"))
	require.NoError(t, err)
	assert.Equal(t, "60.00", balance.StringFixed(2))

	_, err = svc.Withdraw(ctx, u.ID, amount("60.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	b, _ := testutil.GetWalletBalance(t, db, u.ID)
	assert.Equal(t, "60.00", b.StringFixed(2))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, u.ID, domain.TransactionTypeWithdrawal))
}

func TestWithdraw_NoWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	u := testutil.SeedTestUser(t, db, "a@test.com", "A")

	_, err := svc.Withdraw(context.Background(), u.ID, amount("1"))

	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	_, ok := testutil.GetWalletBalance(t, db, u.ID)
	assert.False(t, ok)
}

func TestTransfer_ToUserWithoutWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	a := testutil.SeedTestUser(t, db, "a@test.com", "A")
	b := testutil.SeedTestUser(t, db, "b@test.com", "B")
	testutil.SeedTestWallet(t, db, a.ID, "200.00")
	ctx := context.Background()

	balance, err := svc.Transfer(ctx, wallet.TransferRequest{FromUserID: a.ID, ToUserID: b.ID, Amount: amount("100")})

	require.NoError(t, err)
	assert.Equal(t, "100.00", balance.StringFixed(2))

	bBalance, ok := testutil.GetWalletBalance(t, db, b.ID)
	require.True(t, ok)
	assert.Equal(t, "100.00", bBalance.StringFixed(2))

	assert.Equal(t, 1, testutil.CountTransactions(t, db, a.ID, domain.TransactionTypeTransfer))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, b.ID, domain.TransactionTypeTransfer))

	entries, err := svc.ListTransactions(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DirectionCredit, entries[0].Direction)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(entries[0].Metadata, &meta))
	assert.Equal(t, a.ID.String(), meta["counterparty_user_id"])

	out, err := repository.NewTransactionRepository(db).ListByReference(ctx, "TRANSFER_OUT_"+meta["transfer_id"])
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.DirectionDebit, out[0].Direction)
}

func TestTransfer_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	a := testutil.SeedTestUser(t, db, "a@test.com", "A")
	b := testutil.SeedTestUser(t, db, "b@test.com", "B")
	testutil.SeedTestWallet(t, db, a.ID, "50.00")
	ctx := context.Background()

	_, err := svc.Transfer(ctx, wallet.TransferRequest{FromUserID: a.ID, ToUserID: a.ID, Amount: amount("10")})
	require.ErrorIs(t, err, domain.ErrSelfTransfer)

	_, err = svc.Transfer(ctx, wallet.TransferRequest{FromUserID: a.ID, ToUserID: uuid.New(), Amount: amount("10")})
	require.ErrorIs(t, err, domain.ErrRecipientNotFound)

	_, err = svc.Transfer(ctx, wallet.TransferRequest{FromUserID: a.ID, ToUserID: b.ID, Amount: amount("50.01")})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = svc.Transfer(ctx, wallet.TransferRequest{FromUserID: b.ID, ToUserID: a.ID, Amount: amount("1")})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	aBalance, _ := testutil.GetWalletBalance(t, db, a.ID)
	assert.Equal(t, "50.00", aBalance.StringFixed(2))
	_, ok := testutil.GetWalletBalance(t, db, b.ID)
	assert.False(t, ok, "failed transfers must not leave a recipient wallet behind")
}

func TestTransfer_ConcurrentOverdraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	a := testutil.SeedTestUser(t, db, "a@test.com", "A")
	b := testutil.SeedTestUser(t, db, "b@test.com", "B")
	testutil.SeedTestWallet(t, db, a.ID, "100.00")
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, wallet.TransferRequest{FromUserID: a.ID, ToUserID: b.ID, Amount: amount("70")})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	}
	assert.Equal(t, 1, succeeded)

	aBalance, _ := testutil.GetWalletBalance(t, db, a.ID)
	bBalance, _ := testutil.GetWalletBalance(t, db, b.ID)
	assert.Equal(t, "30.00", aBalance.StringFixed(2))
	assert.Equal(t, "70.00", bBalance.StringFixed(2))
	assert.True(t, testutil.LedgerSum(t, db, a.ID).Equal(amount("-70")))
}

func TestTransfer_OppositeDirectionsDoNotDeadlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	a := testutil.SeedTestUser(t, db, "a@test.com", "A")
	b := testutil.SeedTestUser(t, db, "b@test.com", "B")
	testutil.SeedTestWallet(t, db, a.ID, "100.00")
	testutil.SeedTestWallet(t, db, b.ID, "100.00")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		from, to := a.ID, b.ID
		if i%2 == 1 {
			from, to = b.ID, a.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, wallet.TransferRequest{FromUserID: from, ToUserID: to, Amount: amount("5")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	aBalance, _ := testutil.GetWalletBalance(t, db, a.ID)
	bBalance, _ := testutil.GetWalletBalance(t, db, b.ID)
	assert.Equal(t, "200.00", aBalance.Add(bBalance).StringFixed(2))
}

func TestListTransactions_NoWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	u := testutil.SeedTestUser(t, db, "a@test.com", "A")

	entries, err := svc.ListTransactions(context.Background(), u.ID)

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestBalanceMatchesLedgerAcrossWorkflows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupWalletService(t, db)
	wallets := repository.NewWalletRepository(db)
	transactions := repository.NewTransactionRepository(db)
	bookings := booking.NewService(
		repository.NewDB(db),
		repository.NewBookingRepository(db),
		repository.NewBookingEventRepository(db),
		repository.NewHotelRepository(db),
		repository.NewHotelRepository(db),
		ledger.New(wallets, transactions),
		clock.NewFixed(time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)),
		nil,
		nil,
	)

	guest := testutil.SeedTestUser(t, db, "guest@test.com", "Guest")
	friend := testutil.SeedTestUser(t, db, "friend@test.com", "Friend")
	hotel := testutil.SeedTestHotel(t, db, "Harbour View")
	room := testutil.SeedTestRoom(t, db, hotel.ID, "101")
	ctx := context.Background()

	_, err := svc.Deposit(ctx, guest.ID, amount("500.00"))
	require.NoError(t, err)

	detail, err := bookings.CreateBooking(ctx, booking.CreateBookingRequest{
		UserID:      guest.ID,
		HotelID:     hotel.ID,
		RoomID:      room.ID,
		CheckIn:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC),
		TotalAmount: amount("300.00"),
	})
	require.NoError(t, err)

	_, err = bookings.CancelBooking(ctx, detail.ID, guest.ID)
	require.NoError(t, err)

	_, err = svc.Transfer(ctx, wallet.TransferRequest{FromUserID: guest.ID, ToUserID: friend.ID, Amount: amount("150.00")})
	require.NoError(t, err)

	final, err := svc.Withdraw(ctx, guest.ID, amount("100.00"))
	require.NoError(t, err)
	assert.Equal(t, "250.00", final.StringFixed(2))

	for _, u := range []uuid.UUID{guest.ID, friend.ID} {
		balance, ok := testutil.GetWalletBalance(t, db, u)
		require.True(t, ok)
		assert.True(t, balance.Equal(testutil.LedgerSum(t, db, u)),
			"balance %s must equal ledger sum %s", balance, testutil.LedgerSum(t, db, u))
	}

	friendBalance, _ := testutil.GetWalletBalance(t, db, friend.ID)
	assert.Equal(t, "150.00", friendBalance.StringFixed(2))

	entries, err := svc.ListTransactions(ctx, guest.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 5, "deposit, booking payment, refund, transfer out, withdrawal")
}
