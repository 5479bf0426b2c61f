package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Booking tracks reservation state and payment state independently; a
// cancelled booking keeps PaymentStatusPaid.
type Booking struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	HotelID       uuid.UUID
	RoomID        uuid.UUID
	Stay          Stay
	TotalAmount   decimal.Decimal
	Status        BookingStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingDetail is a booking with the catalog rows a caller usually wants
// rendered alongside it.
type BookingDetail struct {
	Booking
	Hotel    Hotel
	Room     Room
	RoomType RoomType
	Guest    *User
}
