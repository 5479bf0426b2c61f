package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Hotel struct {
	ID          uuid.UUID
	Name        string
	Address     string
	Description string
	Rating      decimal.NullDecimal
	CreatedAt   time.Time
}

type RoomType struct {
	ID            uuid.UUID
	HotelID       uuid.UUID
	Name          string
	Description   string
	PricePerNight decimal.Decimal
	Capacity      int
	CreatedAt     time.Time
}

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusReserved    RoomStatus = "reserved"
)

// Room.Status is informational only. Whether a room can be booked for a
// given stay is decided from bookings.
type Room struct {
	ID         uuid.UUID
	HotelID    uuid.UUID
	RoomTypeID uuid.UUID
	RoomNumber string
	Floor      int
	Status     RoomStatus
	CreatedAt  time.Time
}
