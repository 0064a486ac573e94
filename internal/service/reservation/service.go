package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/domain"
	"github.com/kirinyoku/busgo/internal/repository"
)

type Service struct {
	trips repository.TripRepository
}

func New(trips repository.TripRepository) *Service {
	return &Service{trips: trips}
}

// Book reserves the given seats on a trip for the passenger. Either every
// seat is booked or none is.
//
// The availability checks run against a snapshot and stop at the first
// offending seat. They only produce a precise error message; the conditional
// write in the repository is what rules out double booking.
//
// Parameters:
//   - ctx: request-scoped context.
//   - tripID: ID of the trip.
//   - seatNumbers: seats to book; duplicates are ignored.
//   - p: passenger to attach to the seats.
//
// Returns:
//   - *domain.Trip: the trip snapshot the booking was validated against.
//   - error: reservation.ErrNoSeatsRequested if seatNumbers is empty.
//   - error: reservation.ErrTripNotFound if the trip does not exist.
//   - error: reservation.SeatNotFoundError for the first unknown seat.
//   - error: reservation.SeatUnavailableError for the first seat not available.
//   - error: reservation.ErrBookingConflict if the seats were taken between
//     the check and the write.
//   - error: reservation.ErrStorageUnavailable if storage cannot be reached.
func (s *Service) Book(
	ctx context.Context,
	tripID uuid.UUID,
	seatNumbers []string,
	p domain.Passenger,
) (*domain.Trip, error) {
	const op = "service.reservation.Book"

	seatNumbers = Distinct(seatNumbers)
	if len(seatNumbers) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSeatsRequested)
	}

	trip, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	if err := checkSeats(trip, seatNumbers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.trips.BookSeats(ctx, tripID, seatNumbers, p); err != nil {
		if errors.Is(err, repository.ErrSeatsUnavailable) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	return trip, nil
}

func checkSeats(trip *domain.Trip, seatNumbers []string) error {
	seats := make([]domain.Seat, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		seat, ok := trip.Seat(n)
		if !ok {
			return SeatNotFoundError{Seat: n}
		}
		seats = append(seats, seat)
	}

	for _, seat := range seats {
		if seat.Status != domain.SeatAvailable {
			return SeatUnavailableError{Seat: seat.Number}
		}
	}

	return nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTripNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrBookingConflict
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

// Distinct drops repeated seat numbers, keeping the first occurrence.
func Distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, n := range in {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
