package trips

import (
	"errors"
)

var (
	ErrTripNotFound       = errors.New("trip not found")
	ErrInvalidBusType     = errors.New("invalid bus type")
	ErrInvalidSeatCount   = errors.New("total seats must be between 1 and 100")
	ErrInvalidSeatLayout  = errors.New("seat list must hold total_seats unique seats")
	ErrInvalidSchedule    = errors.New("arrival must not precede departure")
	ErrNothingToUpdate    = errors.New("no valid fields to update")
	ErrTripConflict       = errors.New("trip already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
