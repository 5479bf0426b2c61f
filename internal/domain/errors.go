package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrHotelNotFound       = errors.New("hotel not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomUnavailable     = errors.New("room is not available for the selected dates")
	ErrInsufficientBalance = errors.New("insufficient balance in wallet")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrValidationFailed    = errors.New("validation failed")
	ErrVersionConflict     = errors.New("optimistic lock conflict")
	ErrTransactionAborted  = errors.New("transaction aborted")
)
