package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Stay is a half-open night range [CheckIn, CheckOut). The checkout day is
// free for the next guest.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	s := Stay{CheckIn: truncateDay(checkIn), CheckOut: truncateDay(checkOut)}
	if !s.CheckIn.Before(s.CheckOut) {
		return Stay{}, fmt.Errorf("check_out must be after check_in: %w", ErrInvalidDateRange)
	}
	return s, nil
}

func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return Stay{}, fmt.Errorf("check_in: %w", ErrInvalidDateRange)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return Stay{}, fmt.Errorf("check_out: %w", ErrInvalidDateRange)
	}
	return NewStay(in, out)
}

func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && s.CheckOut.After(other.CheckIn)
}

// StartsAfter reports whether check-in falls on a later calendar day than now.
func (s Stay) StartsAfter(now time.Time) bool {
	return s.CheckIn.After(truncateDay(now))
}

func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
