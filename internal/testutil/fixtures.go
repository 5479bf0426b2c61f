package testutil

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

const TestPassword = "password123"

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedTestHotel(t *testing.T, db *sql.DB, name string) *domain.Hotel {
	t.Helper()

	h := &domain.Hotel{
		ID:        uuid.New(),
		Name:      name,
		Address:   "1 Harbour Road",
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO hotels (id, name, address, created_at) VALUES ($1, $2, $3, $4)`,
		h.ID, h.Name, h.Address, h.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test hotel %s: %v", name, err)
	}
	return h
}

// SeedTestRoom creates a room together with a dedicated room type.
func SeedTestRoom(t *testing.T, db *sql.DB, hotelID uuid.UUID, roomNumber string) *domain.Room {
	t.Helper()

	rt := &domain.RoomType{
		ID:            uuid.New(),
		HotelID:       hotelID,
		Name:          "Deluxe Double",
		PricePerNight: decimal.NewFromInt(150),
		Capacity:      2,
	}
	_, err := db.Exec(
		`INSERT INTO room_types (id, hotel_id, name, price_per_night, capacity)
		 VALUES ($1, $2, $3, $4, $5)`,
		rt.ID, rt.HotelID, rt.Name, rt.PricePerNight, rt.Capacity,
	)
	if err != nil {
		t.Fatalf("seed room type for room %s: %v", roomNumber, err)
	}

	room := &domain.Room{
		ID:         uuid.New(),
		HotelID:    hotelID,
		RoomTypeID: rt.ID,
		RoomNumber: roomNumber,
		Floor:      1,
		Status:     domain.RoomStatusAvailable,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = db.Exec(
		`INSERT INTO rooms (id, hotel_id, room_type_id, room_number, floor, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		room.ID, room.HotelID, room.RoomTypeID, room.RoomNumber, room.Floor, room.Status, room.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test room %s: %v", roomNumber, err)
	}
	return room
}

func SeedTestWallet(t *testing.T, db *sql.DB, userID uuid.UUID, balance string) *domain.Wallet {
	t.Helper()

	w := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.RequireFromString(balance),
		Currency:  domain.CurrencyUSD,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO wallets (id, user_id, balance, currency, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 0, $5, $5)`,
		w.ID, w.UserID, w.Balance, w.Currency, w.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test wallet for %s: %v", userID, err)
	}
	return w
}

// GetWalletBalance returns the balance of the user's wallet. ok is false when
// the user has no wallet.
func GetWalletBalance(t *testing.T, db *sql.DB, userID uuid.UUID) (decimal.Decimal, bool) {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false
	}
	if err != nil {
		t.Fatalf("get wallet balance %s: %v", userID, err)
	}
	return balance, true
}

func CountTransactions(t *testing.T, db *sql.DB, userID uuid.UUID, txType domain.TransactionType) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transactions tr
		 JOIN wallets w ON w.id = tr.wallet_id
		 WHERE w.user_id = $1 AND tr.type = $2`, userID, txType,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count %s transactions for %s: %v", txType, userID, err)
	}
	return count
}

// LedgerSum is the balance implied by the user's ledger entries.
func LedgerSum(t *testing.T, db *sql.DB, userID uuid.UUID) decimal.Decimal {
	t.Helper()

	var sum decimal.Decimal
	err := db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN tr.direction = 'credit' THEN tr.amount ELSE -tr.amount END), 0)
		 FROM transactions tr
		 JOIN wallets w ON w.id = tr.wallet_id
		 WHERE w.user_id = $1`, userID,
	).Scan(&sum)
	if err != nil {
		t.Fatalf("ledger sum for %s: %v", userID, err)
	}
	return sum
}

func GetBookingStatus(t *testing.T, db *sql.DB, bookingID uuid.UUID) (domain.BookingStatus, domain.PaymentStatus) {
	t.Helper()

	var (
		status        domain.BookingStatus
		paymentStatus domain.PaymentStatus
	)
	err := db.QueryRow(
		`SELECT status, payment_status FROM bookings WHERE id = $1`, bookingID,
	).Scan(&status, &paymentStatus)
	if err != nil {
		t.Fatalf("get booking status %s: %v", bookingID, err)
	}
	return status, paymentStatus
}

// SeedTestBooking inserts a booking row directly, bypassing the wallet.
func SeedTestBooking(t *testing.T, db *sql.DB, userID, hotelID, roomID uuid.UUID, checkIn, checkOut string, status domain.BookingStatus) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO bookings (id, user_id, hotel_id, room_id, check_in, check_out, total_amount, status, payment_status)
		 VALUES ($1, $2, $3, $4, $5::date, $6::date, 100, $7, 'paid')`,
		id, userID, hotelID, roomID, checkIn, checkOut, status,
	)
	if err != nil {
		t.Fatalf("seed test booking for room %s: %v", roomID, err)
	}
	return id
}
