package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

const (
	hotelColumns    = `id, name, address, description, rating, created_at`
	roomColumns     = `id, hotel_id, room_type_id, room_number, floor, status, created_at`
	roomTypeColumns = `id, hotel_id, name, description, price_per_night, capacity, created_at`
)

type HotelRepository struct {
	db *sql.DB
}

func NewHotelRepository(db *sql.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

func (r *HotelRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+hotelColumns+` FROM hotels WHERE id = $1`, id,
	)
	h, err := scanHotel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrHotelNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return h, nil
}

// GetRoomForUpdate locks the room row. Every booking for the room queues
// behind this lock, which serialises the availability check.
func (r *HotelRepository) GetRoomForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Room, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id,
	)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetRoomForUpdate: %w", domain.ErrRoomNotFound)
		}
		return nil, fmt.Errorf("GetRoomForUpdate: %w", err)
	}
	return room, nil
}

func (r *HotelRepository) ListRooms(ctx context.Context, hotelID uuid.UUID) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE hotel_id = $1 ORDER BY room_number`, hotelID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListRooms: %w", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRooms: scan: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRooms: rows: %w", err)
	}
	return rooms, nil
}

func scanHotel(s scanner) (*domain.Hotel, error) {
	var h domain.Hotel
	err := s.Scan(&h.ID, &h.Name, &h.Address, &h.Description, &h.Rating, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanRoom(s scanner) (*domain.Room, error) {
	var room domain.Room
	err := s.Scan(
		&room.ID, &room.HotelID, &room.RoomTypeID, &room.RoomNumber,
		&room.Floor, &room.Status, &room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func scanRoomType(s scanner) (*domain.RoomType, error) {
	var rt domain.RoomType
	err := s.Scan(
		&rt.ID, &rt.HotelID, &rt.Name, &rt.Description,
		&rt.PricePerNight, &rt.Capacity, &rt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}
