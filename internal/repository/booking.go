package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

const bookingColumns = `id, user_id, hotel_id, room_id, check_in, check_out,
	total_amount, status, payment_status, created_at, updated_at`

const bookingDetailSelect = `SELECT
	b.id, b.user_id, b.hotel_id, b.room_id, b.check_in, b.check_out,
	b.total_amount, b.status, b.payment_status, b.created_at, b.updated_at,
	h.id, h.name, h.address, h.description, h.rating, h.created_at,
	r.id, r.hotel_id, r.room_type_id, r.room_number, r.floor, r.status, r.created_at,
	rt.id, rt.hotel_id, rt.name, rt.description, rt.price_per_night, rt.capacity, rt.created_at`

const bookingDetailJoins = `
	FROM bookings b
	JOIN hotels h ON h.id = b.hotel_id
	JOIN rooms r ON r.id = b.room_id
	JOIN room_types rt ON rt.id = r.room_type_id`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx *sql.Tx, b *domain.Booking) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (
			id, user_id, hotel_id, room_id, check_in, check_out,
			total_amount, status, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5::date, $6::date, $7, $8, $9, $10, $11)`,
		b.ID, b.UserID, b.HotelID, b.RoomID,
		b.Stay.CheckIn.Format(domain.DateLayout), b.Stay.CheckOut.Format(domain.DateLayout),
		b.TotalAmount, b.Status, b.PaymentStatus, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", translate(err))
	}
	return nil
}

// HasOverlap reports whether a non-cancelled booking for the room intersects
// the half-open stay.
func (r *BookingRepository) HasOverlap(ctx context.Context, q Querier, roomID uuid.UUID, stay domain.Stay) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status <> 'cancelled'
			  AND check_in < $3::date
			  AND check_out > $2::date
		)`,
		roomID, stay.CheckIn.Format(domain.DateLayout), stay.CheckOut.Format(domain.DateLayout),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("HasOverlap: %w", err)
	}
	return exists, nil
}

// BookedRoomIDs returns the rooms of a hotel that have a conflicting booking
// for the stay.
func (r *BookingRepository) BookedRoomIDs(ctx context.Context, hotelID uuid.UUID, stay domain.Stay) (map[uuid.UUID]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT room_id FROM bookings
		WHERE hotel_id = $1
		  AND status <> 'cancelled'
		  AND check_in < $3::date
		  AND check_out > $2::date`,
		hotelID, stay.CheckIn.Format(domain.DateLayout), stay.CheckOut.Format(domain.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("BookedRoomIDs: %w", err)
	}
	defer rows.Close()

	booked := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("BookedRoomIDs: scan: %w", err)
		}
		booked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("BookedRoomIDs: rows: %w", err)
	}
	return booked, nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Booking, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id,
	)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.BookingStatus, now time.Time) error {
	return r.update(ctx, tx, "UpdateStatus",
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
		status, now, id,
	)
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.PaymentStatus, now time.Time) error {
	return r.update(ctx, tx, "UpdatePaymentStatus",
		`UPDATE bookings SET payment_status = $1, updated_at = $2 WHERE id = $3`,
		status, now, id,
	)
}

func (r *BookingRepository) update(ctx context.Context, tx *sql.Tx, op, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (r *BookingRepository) GetDetail(ctx context.Context, q Querier, id uuid.UUID) (*domain.BookingDetail, error) {
	row := q.QueryRowContext(ctx, bookingDetailSelect+bookingDetailJoins+` WHERE b.id = $1`, id)
	d, err := scanBookingDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetDetail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetDetail: %w", err)
	}
	return d, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingDetailSelect+bookingDetailJoins+`
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	bookings := []domain.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUser: scan: %w", err)
		}
		bookings = append(bookings, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUser: rows: %w", err)
	}
	return bookings, nil
}

// ListByHotel includes the guest so front-desk views need no second lookup.
func (r *BookingRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]domain.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingDetailSelect+`, u.id, u.email, u.name, u.status, u.created_at`+bookingDetailJoins+`
		JOIN users u ON u.id = b.user_id
		WHERE b.hotel_id = $1
		ORDER BY b.created_at DESC, b.id`, hotelID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByHotel: %w", err)
	}
	defer rows.Close()

	bookings := []domain.BookingDetail{}
	for rows.Next() {
		var (
			d     domain.BookingDetail
			guest domain.User
		)
		var checkIn, checkOut time.Time
		dest := append(bookingDetailDest(&d, &checkIn, &checkOut),
			&guest.ID, &guest.Email, &guest.Name, &guest.Status, &guest.CreatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("ListByHotel: scan: %w", err)
		}
		d.Stay = domain.Stay{CheckIn: checkIn, CheckOut: checkOut}
		d.Guest = &guest
		bookings = append(bookings, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByHotel: rows: %w", err)
	}
	return bookings, nil
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var (
		b                 domain.Booking
		checkIn, checkOut time.Time
	)
	err := s.Scan(
		&b.ID, &b.UserID, &b.HotelID, &b.RoomID, &checkIn, &checkOut,
		&b.TotalAmount, &b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Stay = domain.Stay{CheckIn: checkIn, CheckOut: checkOut}
	return &b, nil
}

// bookingDetailDest lists scan targets in bookingDetailSelect order.
func bookingDetailDest(d *domain.BookingDetail, checkIn, checkOut *time.Time) []any {
	return []any{
		&d.ID, &d.UserID, &d.HotelID, &d.RoomID, checkIn, checkOut,
		&d.TotalAmount, &d.Status, &d.PaymentStatus, &d.CreatedAt, &d.UpdatedAt,
		&d.Hotel.ID, &d.Hotel.Name, &d.Hotel.Address, &d.Hotel.Description, &d.Hotel.Rating, &d.Hotel.CreatedAt,
		&d.Room.ID, &d.Room.HotelID, &d.Room.RoomTypeID, &d.Room.RoomNumber, &d.Room.Floor, &d.Room.Status, &d.Room.CreatedAt,
		&d.RoomType.ID, &d.RoomType.HotelID, &d.RoomType.Name, &d.RoomType.Description,
		&d.RoomType.PricePerNight, &d.RoomType.Capacity, &d.RoomType.CreatedAt,
	}
}

func scanBookingDetail(s scanner) (*domain.BookingDetail, error) {
	var (
		d                 domain.BookingDetail
		checkIn, checkOut time.Time
	)
	if err := s.Scan(bookingDetailDest(&d, &checkIn, &checkOut)...); err != nil {
		return nil, err
	}
	d.Stay = domain.Stay{CheckIn: checkIn, CheckOut: checkOut}
	return &d, nil
}
