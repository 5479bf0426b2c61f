package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

type userDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}

type hotelDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description,omitempty"`
	Rating      *string   `json:"rating"`
}

func toHotelDTO(h *domain.Hotel) hotelDTO {
	dto := hotelDTO{ID: h.ID, Name: h.Name, Address: h.Address, Description: h.Description}
	if h.Rating.Valid {
		r := h.Rating.Decimal.StringFixed(1)
		dto.Rating = &r
	}
	return dto
}

type roomTypeDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PricePerNight string    `json:"price_per_night"`
	Capacity      int       `json:"capacity"`
}

type roomDTO struct {
	ID         uuid.UUID    `json:"id"`
	HotelID    uuid.UUID    `json:"hotel_id"`
	RoomNumber string       `json:"room_number"`
	Floor      int          `json:"floor"`
	Status     string       `json:"status"`
	RoomType   *roomTypeDTO `json:"room_type,omitempty"`
}

func toRoomDTO(r *domain.Room) roomDTO {
	return roomDTO{
		ID:         r.ID,
		HotelID:    r.HotelID,
		RoomNumber: r.RoomNumber,
		Floor:      r.Floor,
		Status:     string(r.Status),
	}
}

type bookingDTO struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	HotelID       uuid.UUID `json:"hotel_id"`
	RoomID        uuid.UUID `json:"room_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Nights        int       `json:"nights"`
	TotalAmount   string    `json:"total_amount"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Hotel         hotelDTO  `json:"hotel"`
	Room          roomDTO   `json:"room"`
	User          *userDTO  `json:"user,omitempty"`
}

func toBookingDTO(d *domain.BookingDetail) bookingDTO {
	room := toRoomDTO(&d.Room)
	room.RoomType = &roomTypeDTO{
		ID:            d.RoomType.ID,
		Name:          d.RoomType.Name,
		PricePerNight: d.RoomType.PricePerNight.StringFixed(2),
		Capacity:      d.RoomType.Capacity,
	}

	dto := bookingDTO{
		ID:            d.ID,
		UserID:        d.UserID,
		HotelID:       d.HotelID,
		RoomID:        d.RoomID,
		CheckIn:       d.Stay.CheckIn.Format(domain.DateLayout),
		CheckOut:      d.Stay.CheckOut.Format(domain.DateLayout),
		Nights:        d.Stay.Nights(),
		TotalAmount:   d.TotalAmount.StringFixed(2),
		Status:        string(d.Status),
		PaymentStatus: string(d.PaymentStatus),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Hotel:         toHotelDTO(&d.Hotel),
		Room:          room,
	}
	if d.Guest != nil {
		u := toUserDTO(d.Guest)
		dto.User = &u
	}
	return dto
}

func toBookingDTOs(details []domain.BookingDetail) []bookingDTO {
	out := make([]bookingDTO, 0, len(details))
	for i := range details {
		out = append(out, toBookingDTO(&details[i]))
	}
	return out
}

type transactionDTO struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Direction     string          `json:"direction"`
	Amount        string          `json:"amount"`
	Currency      string          `json:"currency"`
	BalanceBefore string          `json:"balance_before"`
	BalanceAfter  string          `json:"balance_after"`
	Description   string          `json:"description"`
	ReferenceID   string          `json:"reference_id"`
	Status        string          `json:"status"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toTransactionDTOs(entries []domain.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, transactionDTO{
			ID:            e.ID,
			Type:          string(e.Type),
			Direction:     string(e.Direction),
			Amount:        e.Amount.StringFixed(2),
			Currency:      string(e.Currency),
			BalanceBefore: e.BalanceBefore.StringFixed(2),
			BalanceAfter:  e.BalanceAfter.StringFixed(2),
			Description:   e.Description,
			ReferenceID:   e.ReferenceID,
			Status:        string(e.Status),
			Metadata:      e.Metadata,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}
