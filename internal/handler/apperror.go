package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrForbidden          = &AppError{http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource"}
	ErrRateLimited        = &AppError{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrUpstreamFailed     = &AppError{http.StatusBadGateway, "UPSTREAM_FAILED", "Log service is unavailable"}

	ErrHotelNotFound         = &AppError{http.StatusNotFound, "HOTEL_NOT_FOUND", "Hotel not found"}
	ErrRoomNotFound          = &AppError{http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found"}
	ErrBookingNotFound       = &AppError{http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found"}
	ErrRoomUnavailable       = &AppError{http.StatusBadRequest, "ROOM_UNAVAILABLE", "Room is not available for the selected dates"}
	ErrInsufficientBalance   = &AppError{http.StatusBadRequest, "INSUFFICIENT_BALANCE", "Insufficient wallet balance"}
	ErrAlreadyCancelled      = &AppError{http.StatusBadRequest, "ALREADY_CANCELLED", "Booking is already cancelled"}
	ErrSelfTransfer          = &AppError{http.StatusBadRequest, "SELF_TRANSFER_NOT_ALLOWED", "Cannot transfer to yourself"}
	ErrRecipientNotFound     = &AppError{http.StatusBadRequest, "RECIPIENT_NOT_FOUND", "Recipient not found"}
	ErrInvalidAmount         = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive with at most two decimal places"}
	ErrInvalidDateRange      = &AppError{http.StatusBadRequest, "INVALID_DATE_RANGE", "check_in must be after today and before check_out"}
	ErrVersionConflict       = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyInProgress = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed"}
)
