package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
)

const (
	pgCheckViolation     pq.ErrorCode = "23514"
	pgExclusionViolation pq.ErrorCode = "23P01"
	pgNumericOverflow    pq.ErrorCode = "22003"

	bookingOverlapConstraint = "bookings_no_overlap"
	walletBalanceConstraint  = "wallets_balance_non_negative"
)

// translate turns constraint violations that back a business rule into the
// matching domain error. Anything else is returned unchanged.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch {
	case pqErr.Code == pgExclusionViolation && pqErr.Constraint == bookingOverlapConstraint:
		return fmt.Errorf("%w: %s", domain.ErrRoomUnavailable, pqErr.Message)
	case pqErr.Code == pgCheckViolation && pqErr.Constraint == walletBalanceConstraint:
		return fmt.Errorf("%w: %s", domain.ErrInsufficientBalance, pqErr.Message)
	case pqErr.Code == pgNumericOverflow:
		return fmt.Errorf("%w: %s", domain.ErrInvalidAmount, pqErr.Message)
	}
	return err
}
