package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

const bookingEventColumns = `id, booking_id, event_type, actor, payload, created_at`

type BookingEventRepository struct {
	db *sql.DB
}

func NewBookingEventRepository(db *sql.DB) *BookingEventRepository {
	return &BookingEventRepository{db: db}
}

func (r *BookingEventRepository) Create(ctx context.Context, tx *sql.Tx, event *domain.BookingEvent) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO booking_events (id, booking_id, event_type, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.BookingID, event.EventType, event.Actor,
		nullableJSON(event.Payload), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *BookingEventRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingEventColumns+` FROM booking_events
		WHERE booking_id = $1 ORDER BY created_at, event_type`, bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByBookingID: %w", err)
	}
	defer rows.Close()

	var events []domain.BookingEvent
	for rows.Next() {
		var (
			e       domain.BookingEvent
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.BookingID, &e.EventType, &e.Actor, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("GetByBookingID: scan: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByBookingID: rows: %w", err)
	}
	return events, nil
}

// nullableJSON stores an empty payload as SQL NULL rather than invalid JSON.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
