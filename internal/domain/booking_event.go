package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	BookingEventTypeCreated   BookingEventType = "created"
	BookingEventTypePaid      BookingEventType = "paid"
	BookingEventTypeCancelled BookingEventType = "cancelled"
)

type BookingEvent struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	EventType BookingEventType
	Actor     string
	Payload   json.RawMessage
	CreatedAt time.Time
}
