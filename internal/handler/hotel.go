package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

type catalogService interface {
	AvailableRooms(ctx context.Context, hotelID uuid.UUID, stay domain.Stay) (*domain.Hotel, []domain.Room, error)
}

type HotelHandler struct {
	catalog catalogService
}

func NewHotelHandler(catalog catalogService) *HotelHandler {
	return &HotelHandler{catalog: catalog}
}

func (h *HotelHandler) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r, ErrHotelNotFound)
	if !ok {
		return
	}

	q := r.URL.Query()
	var fields []FieldError
	if q.Get("check_in") == "" {
		fields = append(fields, FieldError{Field: "check_in", Message: "required"})
	}
	if q.Get("check_out") == "" {
		fields = append(fields, FieldError{Field: "check_out", Message: "required"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	stay, err := domain.ParseStay(q.Get("check_in"), q.Get("check_out"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	hotel, rooms, err := h.catalog.AvailableRooms(r.Context(), hotelID, stay)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	out := make([]roomDTO, 0, len(rooms))
	for i := range rooms {
		out = append(out, toRoomDTO(&rooms[i]))
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"hotel":     toHotelDTO(hotel),
		"check_in":  stay.CheckIn.Format(domain.DateLayout),
		"check_out": stay.CheckOut.Format(domain.DateLayout),
		"rooms":     out,
	})
}
