package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/service/ledger"
)

type CreateBookingRequest struct {
	UserID      uuid.UUID
	HotelID     uuid.UUID
	RoomID      uuid.UUID
	CheckIn     time.Time
	CheckOut    time.Time
	TotalAmount decimal.Decimal
}

// CreateBooking reserves the room and pays for it from the user's wallet in
// one transaction. Either the booking, the debit and its ledger entry all
// commit, or none of them do.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.BookingDetail, error) {
	log := logging.FromContext(ctx)

	stay, err := validateCreate(req, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("CreateBooking: %w", err)
	}

	var detail *domain.BookingDetail
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		b, err := s.reserveAndPay(ctx, tx, req, stay)
		if err != nil {
			return err
		}
		detail, err = s.bookings.GetDetail(ctx, tx, b.ID)
		return err
	})
	if err != nil {
		if isBusinessError(err) {
			return nil, fmt.Errorf("CreateBooking: %w", err)
		}
		return nil, fmt.Errorf("CreateBooking: %w: %w", domain.ErrTransactionAborted, err)
	}

	log.Info("booking created",
		"booking_id", detail.ID,
		"user_id", req.UserID,
		"room_id", req.RoomID,
		"check_in", stay.CheckIn.Format(domain.DateLayout),
		"check_out", stay.CheckOut.Format(domain.DateLayout),
		"total_amount", req.TotalAmount.StringFixed(2),
	)

	s.announce(ctx, "info", "Booking created", EventBookingCreated, req.UserID, map[string]any{
		"booking_id":   detail.ID,
		"hotel_id":     detail.HotelID,
		"room_id":      detail.RoomID,
		"check_in":     stay.CheckIn.Format(domain.DateLayout),
		"check_out":    stay.CheckOut.Format(domain.DateLayout),
		"total_amount": req.TotalAmount.StringFixed(2),
	})

	return detail, nil
}

func validateCreate(req CreateBookingRequest, now time.Time) (domain.Stay, error) {
	if req.UserID == uuid.Nil || req.HotelID == uuid.Nil || req.RoomID == uuid.Nil {
		return domain.Stay{}, fmt.Errorf("validateCreate: missing identifier: %w", domain.ErrValidationFailed)
	}
	if err := domain.CheckBookingAmount(req.TotalAmount); err != nil {
		return domain.Stay{}, fmt.Errorf("validateCreate: total_amount %w", err)
	}
	stay, err := domain.NewStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return domain.Stay{}, fmt.Errorf("validateCreate: %w", err)
	}
	if !stay.StartsAfter(now) {
		return domain.Stay{}, fmt.Errorf("validateCreate: check_in must be after today: %w", domain.ErrInvalidDateRange)
	}
	return stay, nil
}

func (s *Service) reserveAndPay(ctx context.Context, tx *sql.Tx, req CreateBookingRequest, stay domain.Stay) (*domain.Booking, error) {
	room, err := s.rooms.GetRoomForUpdate(ctx, tx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("reserveAndPay: %w", err)
	}
	if room.HotelID != req.HotelID {
		return nil, fmt.Errorf("reserveAndPay: room %s is not in hotel %s: %w", room.ID, req.HotelID, domain.ErrRoomNotFound)
	}

	available, err := s.checker.IsAvailable(ctx, tx, room.ID, stay)
	if err != nil {
		return nil, fmt.Errorf("reserveAndPay: %w", err)
	}
	if !available {
		return nil, fmt.Errorf("reserveAndPay: %w", domain.ErrRoomUnavailable)
	}

	wallet, err := s.ledger.EnsureAndLock(ctx, tx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("reserveAndPay: %w", err)
	}
	if !wallet.CanCover(req.TotalAmount) {
		return nil, fmt.Errorf("reserveAndPay: %w", domain.ErrInsufficientBalance)
	}

	now := time.Now().UTC()
	b := &domain.Booking{
		ID:            uuid.New(),
		UserID:        req.UserID,
		HotelID:       req.HotelID,
		RoomID:        room.ID,
		Stay:          stay,
		TotalAmount:   req.TotalAmount,
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.bookings.Create(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("reserveAndPay: create booking: %w", err)
	}
	if err := s.writeEvent(ctx, tx, b.ID, domain.BookingEventTypeCreated, req.UserID, map[string]any{
		"check_in":     stay.CheckIn.Format(domain.DateLayout),
		"check_out":    stay.CheckOut.Format(domain.DateLayout),
		"total_amount": req.TotalAmount.StringFixed(2),
	}); err != nil {
		return nil, fmt.Errorf("reserveAndPay: %w", err)
	}

	reference := domain.BookingPaymentReference(b.ID)
	// Free stays have nothing to debit; the ledger only records positive amounts.
	if b.TotalAmount.IsPositive() {
		if _, err := s.ledger.Debit(ctx, tx, wallet, ledger.Posting{
			Type:        domain.TransactionTypeBookingPayment,
			Amount:      b.TotalAmount,
			Description: fmt.Sprintf("Hotel booking #%s", b.ID),
			ReferenceID: reference,
			Metadata: map[string]any{
				"booking_id": b.ID,
				"hotel_id":   b.HotelID,
				"room_id":    b.RoomID,
			},
		}); err != nil {
			return nil, fmt.Errorf("reserveAndPay: %w", err)
		}
	}

	if err := s.bookings.UpdatePaymentStatus(ctx, tx, b.ID, domain.PaymentStatusPaid, now); err != nil {
		return nil, fmt.Errorf("reserveAndPay: %w", err)
	}
	b.PaymentStatus = domain.PaymentStatusPaid

	if err := s.writeEvent(ctx, tx, b.ID, domain.BookingEventTypePaid, req.UserID, map[string]any{
		"reference_id": reference,
	}); err != nil {
		return nil, fmt.Errorf("reserveAndPay: %w", err)
	}

	return b, nil
}

func (s *Service) writeEvent(ctx context.Context, tx *sql.Tx, bookingID uuid.UUID, eventType domain.BookingEventType, actorUserID uuid.UUID, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("writeEvent: %w", err)
	}
	event := &domain.BookingEvent{
		ID:        uuid.New(),
		BookingID: bookingID,
		EventType: eventType,
		Actor:     fmt.Sprintf("user:%s", actorUserID),
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("writeEvent: %w", err)
	}
	return nil
}

var businessErrors = []error{
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrHotelNotFound,
	domain.ErrRoomNotFound,
	domain.ErrRoomUnavailable,
	domain.ErrInsufficientBalance,
	domain.ErrAlreadyCancelled,
	domain.ErrValidationFailed,
	domain.ErrInvalidAmount,
	domain.ErrInvalidDateRange,
}

// isBusinessError separates rule violations, which are reported as-is, from
// datastore failures, which abort the transaction as unexpected.
func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
