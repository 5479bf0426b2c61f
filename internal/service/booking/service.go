package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/clock"
	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/repository"
	"github.com/josh-kwaku/hotel-booking/internal/service/ledger"
)

const (
	logSource = "booking"

	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Conn() *sql.DB
}

type bookingRepo interface {
	Create(ctx context.Context, tx *sql.Tx, b *domain.Booking) error
	HasOverlap(ctx context.Context, q repository.Querier, roomID uuid.UUID, stay domain.Stay) (bool, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Booking, error)
	GetDetail(ctx context.Context, q repository.Querier, id uuid.UUID) (*domain.BookingDetail, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.BookingStatus, now time.Time) error
	UpdatePaymentStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.PaymentStatus, now time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BookingDetail, error)
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]domain.BookingDetail, error)
}

type eventRepo interface {
	Create(ctx context.Context, tx *sql.Tx, event *domain.BookingEvent) error
}

type roomLocker interface {
	GetRoomForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Room, error)
}

type hotelReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Hotel, error)
}

// ActivityLog ships business events to the central log service. It must not
// block or fail the caller.
type ActivityLog interface {
	SendLog(ctx context.Context, level, message string, fields map[string]any, source string, userID uuid.UUID)
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Service struct {
	db        txRunner
	bookings  bookingRepo
	events    eventRepo
	rooms     roomLocker
	hotels    hotelReader
	ledger    *ledger.Ledger
	checker   *Checker
	clock     clock.Clock
	activity  ActivityLog
	publisher Publisher
}

func NewService(
	db txRunner,
	bookings bookingRepo,
	events eventRepo,
	rooms roomLocker,
	hotels hotelReader,
	l *ledger.Ledger,
	clk clock.Clock,
	activity ActivityLog,
	publisher Publisher,
) *Service {
	return &Service{
		db:        db,
		bookings:  bookings,
		events:    events,
		rooms:     rooms,
		hotels:    hotels,
		ledger:    l,
		checker:   NewChecker(bookings),
		clock:     clk,
		activity:  activity,
		publisher: publisher,
	}
}

// announce runs after commit. Failures are logged and swallowed.
func (s *Service) announce(ctx context.Context, level, message, routingKey string, userID uuid.UUID, fields map[string]any) {
	if s.activity != nil {
		s.activity.SendLog(ctx, level, message, fields, logSource, userID)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, routingKey, fields); err != nil {
			logging.FromContext(ctx).Warn("booking event publish failed",
				"routing_key", routingKey,
				"error", err,
			)
		}
	}
}
