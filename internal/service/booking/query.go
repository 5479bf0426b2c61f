package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
)

func (s *Service) GetBookingForUser(ctx context.Context, bookingID, userID uuid.UUID) (*domain.BookingDetail, error) {
	d, err := s.bookings.GetDetail(ctx, s.reader(), bookingID)
	if err != nil {
		return nil, fmt.Errorf("GetBookingForUser: %w", err)
	}
	if d.UserID != userID {
		return nil, fmt.Errorf("GetBookingForUser: %w", domain.ErrForbidden)
	}
	return d, nil
}

// ListUserBookings returns the user's bookings, newest first.
func (s *Service) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]domain.BookingDetail, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListUserBookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) ListHotelBookings(ctx context.Context, hotelID uuid.UUID) ([]domain.BookingDetail, error) {
	if _, err := s.hotels.GetByID(ctx, hotelID); err != nil {
		return nil, fmt.Errorf("ListHotelBookings: %w", err)
	}
	bookings, err := s.bookings.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("ListHotelBookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) reader() repository.Querier {
	return s.db.Conn()
}
