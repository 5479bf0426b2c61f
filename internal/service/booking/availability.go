package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
)

type overlapFinder interface {
	HasOverlap(ctx context.Context, q repository.Querier, roomID uuid.UUID, stay domain.Stay) (bool, error)
}

// Checker answers whether a room is free for a stay. It is read-only; to be
// race-free it must run on the same transaction as the insert that follows,
// after the room row has been locked.
type Checker struct {
	bookings overlapFinder
}

func NewChecker(bookings overlapFinder) *Checker {
	return &Checker{bookings: bookings}
}

func (c *Checker) IsAvailable(ctx context.Context, q repository.Querier, roomID uuid.UUID, stay domain.Stay) (bool, error) {
	taken, err := c.bookings.HasOverlap(ctx, q, roomID, stay)
	if err != nil {
		return false, fmt.Errorf("IsAvailable: %w", err)
	}
	return !taken, nil
}
