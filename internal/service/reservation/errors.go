package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrTripNotFound       = errors.New("trip not found")
	ErrNoSeatsRequested   = errors.New("no seats selected")
	ErrSeatNotFound       = errors.New("seat not found")
	ErrSeatUnavailable    = errors.New("seat is not available")
	ErrBookingConflict    = errors.New("seats were booked concurrently")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type SeatNotFoundError struct {
	Seat string
}

func (e SeatNotFoundError) Error() string {
	return fmt.Sprintf("seat %s not found", e.Seat)
}

func (e SeatNotFoundError) Is(target error) bool {
	return target == ErrSeatNotFound
}

type SeatUnavailableError struct {
	Seat string
}

func (e SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat %s is not available", e.Seat)
}

func (e SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}
