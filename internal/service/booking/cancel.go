package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/service/ledger"
)

// CancelBooking marks the booking cancelled and refunds its total to the
// owner's wallet. A booking is refunded at most once: the booking row is
// locked, so a concurrent second cancel sees the first one's result.
func (s *Service) CancelBooking(ctx context.Context, bookingID, requestingUserID uuid.UUID) (decimal.Decimal, error) {
	log := logging.FromContext(ctx)

	var b *domain.Booking
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		b, err = s.bookings.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != requestingUserID {
			return domain.ErrForbidden
		}
		if b.IsCancelled() {
			return domain.ErrAlreadyCancelled
		}
		return s.cancelAndRefund(ctx, tx, b, requestingUserID)
	})
	if err != nil {
		if isBusinessError(err) {
			return decimal.Zero, fmt.Errorf("CancelBooking: %w", err)
		}
		return decimal.Zero, fmt.Errorf("CancelBooking: %w: %w", domain.ErrTransactionAborted, err)
	}

	log.Info("booking cancelled",
		"booking_id", b.ID,
		"user_id", b.UserID,
		"refund_amount", b.TotalAmount.StringFixed(2),
	)

	s.announce(ctx, "info", "Booking cancelled", EventBookingCancelled, b.UserID, map[string]any{
		"booking_id":    b.ID,
		"hotel_id":      b.HotelID,
		"room_id":       b.RoomID,
		"refund_amount": b.TotalAmount.StringFixed(2),
	})

	return b.TotalAmount, nil
}

func (s *Service) cancelAndRefund(ctx context.Context, tx *sql.Tx, b *domain.Booking, actorUserID uuid.UUID) error {
	now := time.Now().UTC()
	if err := s.bookings.UpdateStatus(ctx, tx, b.ID, domain.BookingStatusCancelled, now); err != nil {
		return fmt.Errorf("cancelAndRefund: %w", err)
	}
	b.Status = domain.BookingStatusCancelled

	if err := s.writeEvent(ctx, tx, b.ID, domain.BookingEventTypeCancelled, actorUserID, map[string]any{
		"refund_amount": b.TotalAmount.StringFixed(2),
	}); err != nil {
		return fmt.Errorf("cancelAndRefund: %w", err)
	}

	if !b.TotalAmount.IsPositive() {
		return nil
	}

	wallet, err := s.ledger.Lock(ctx, tx, b.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		// A paid booking implies a wallet. Recreate it so the refund lands
		// and leave a trail for whoever removed it.
		logging.FromContext(ctx).Error("wallet missing for booking owner on cancel",
			"booking_id", b.ID,
			"user_id", b.UserID,
			"refund_amount", b.TotalAmount.StringFixed(2),
		)
		wallet, err = s.ledger.EnsureAndLock(ctx, tx, b.UserID)
	}
	if err != nil {
		return fmt.Errorf("cancelAndRefund: %w", err)
	}

	_, err = s.ledger.Credit(ctx, tx, wallet, ledger.Posting{
		Type:        domain.TransactionTypeRefund,
		Amount:      b.TotalAmount,
		Description: fmt.Sprintf("Refund for cancelled booking #%s", b.ID),
		ReferenceID: domain.RefundReference(b.ID),
		Metadata: map[string]any{
			"booking_id": b.ID,
		},
	})
	if err != nil {
		return fmt.Errorf("cancelAndRefund: %w", err)
	}
	return nil
}
