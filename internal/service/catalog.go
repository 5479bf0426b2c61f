package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/clock"
	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
)

type hotelRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)
	ListRooms(ctx context.Context, hotelID uuid.UUID) ([]domain.Room, error)
}

type bookedRooms interface {
	BookedRoomIDs(ctx context.Context, hotelID uuid.UUID, stay domain.Stay) (map[uuid.UUID]bool, error)
}

type CatalogService struct {
	hotels   hotelRepo
	bookings bookedRooms
	clock    clock.Clock
}

func NewCatalogService(hotels hotelRepo, bookings bookedRooms, clk clock.Clock) *CatalogService {
	return &CatalogService{hotels: hotels, bookings: bookings, clock: clk}
}

// AvailableRooms lists the hotel's rooms that have no active booking
// overlapping stay. The answer is advisory: booking re-checks under lock.
func (s *CatalogService) AvailableRooms(ctx context.Context, hotelID uuid.UUID, stay domain.Stay) (*domain.Hotel, []domain.Room, error) {
	if !stay.StartsAfter(s.clock.Now()) {
		return nil, nil, fmt.Errorf("AvailableRooms: check_in must be after today: %w", domain.ErrInvalidDateRange)
	}

	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return nil, nil, fmt.Errorf("AvailableRooms: %w", err)
	}

	rooms, err := s.hotels.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, nil, fmt.Errorf("AvailableRooms: %w", err)
	}
	booked, err := s.bookings.BookedRoomIDs(ctx, hotelID, stay)
	if err != nil {
		return nil, nil, fmt.Errorf("AvailableRooms: %w", err)
	}

	available := make([]domain.Room, 0, len(rooms))
	for _, r := range rooms {
		if !booked[r.ID] {
			available = append(available, r)
		}
	}

	logging.FromContext(ctx).Debug("available rooms computed",
		"hotel_id", hotelID,
		"total_rooms", len(rooms),
		"available", len(available),
	)
	return hotel, available, nil
}
