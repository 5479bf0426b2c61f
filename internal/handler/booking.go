package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/service/booking"
)

type bookingService interface {
	CreateBooking(ctx context.Context, req booking.CreateBookingRequest) (*domain.BookingDetail, error)
	CancelBooking(ctx context.Context, bookingID, requestingUserID uuid.UUID) (decimal.Decimal, error)
	GetBookingForUser(ctx context.Context, bookingID, userID uuid.UUID) (*domain.BookingDetail, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]domain.BookingDetail, error)
	ListHotelBookings(ctx context.Context, hotelID uuid.UUID) ([]domain.BookingDetail, error)
}

type BookingHandler struct {
	bookings bookingService
}

func NewBookingHandler(bookings bookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	HotelID     string              `json:"hotel_id"`
	RoomID      string              `json:"room_id"`
	CheckIn     string              `json:"check_in"`
	CheckOut    string              `json:"check_out"`
	TotalAmount decimal.NullDecimal `json:"total_amount"`
}

type parsedBooking struct {
	hotelID  uuid.UUID
	roomID   uuid.UUID
	checkIn  time.Time
	checkOut time.Time
}

func (r createBookingRequest) Validate() (parsedBooking, []FieldError) {
	var (
		p    parsedBooking
		errs []FieldError
		err  error
	)

	if p.hotelID, err = uuid.Parse(r.HotelID); err != nil {
		errs = append(errs, FieldError{Field: "hotel_id", Message: "must be a valid UUID"})
	}
	if p.roomID, err = uuid.Parse(r.RoomID); err != nil {
		errs = append(errs, FieldError{Field: "room_id", Message: "must be a valid UUID"})
	}
	if p.checkIn, err = time.Parse(domain.DateLayout, r.CheckIn); err != nil {
		errs = append(errs, FieldError{Field: "check_in", Message: "must be a date (YYYY-MM-DD)"})
	}
	if p.checkOut, err = time.Parse(domain.DateLayout, r.CheckOut); err != nil {
		errs = append(errs, FieldError{Field: "check_out", Message: "must be a date (YYYY-MM-DD)"})
	} else if !p.checkIn.IsZero() && !p.checkOut.After(p.checkIn) {
		errs = append(errs, FieldError{Field: "check_out", Message: "must be after check_in"})
	}

	if !r.TotalAmount.Valid {
		errs = append(errs, FieldError{Field: "total_amount", Message: "required"})
	} else if err := domain.CheckBookingAmount(r.TotalAmount.Decimal); err != nil {
		errs = append(errs, FieldError{Field: "total_amount", Message: "must be zero or more with at most two decimal places"})
	}

	return p, errs
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	parsed, fields := req.Validate()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	detail, err := h.bookings.CreateBooking(r.Context(), booking.CreateBookingRequest{
		UserID:      userID,
		HotelID:     parsed.hotelID,
		RoomID:      parsed.roomID,
		CheckIn:     parsed.checkIn,
		CheckOut:    parsed.checkOut,
		TotalAmount: req.TotalAmount.Decimal,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("booking creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]any{
		"booking": toBookingDTO(detail),
		"message": "Booking created successfully",
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r, ErrBookingNotFound)
	if !ok {
		return
	}

	detail, err := h.bookings.GetBookingForUser(r.Context(), bookingID, userID)
	if err != nil {
		respondBookingError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBookingDTO(detail))
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListUserBookings(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"bookings": toBookingDTOs(bookings),
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r, ErrBookingNotFound)
	if !ok {
		return
	}

	refund, err := h.bookings.CancelBooking(r.Context(), bookingID, userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("booking cancellation failed", "booking_id", bookingID, "error", err)
		respondBookingError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"message":       "Booking cancelled successfully",
		"refund_amount": refund.StringFixed(2),
	})
}

func (h *BookingHandler) ListForHotel(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r, ErrHotelNotFound)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListHotelBookings(r.Context(), hotelID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"bookings": toBookingDTOs(bookings),
	})
}

func respondBookingError(w http.ResponseWriter, err error) {
	appErr := appErrorFor(err)
	if appErr == ErrResourceNotFound {
		appErr = ErrBookingNotFound
	}
	RespondAppError(w, appErr, nil)
}
