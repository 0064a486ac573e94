package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/domain"
)

// TripRepository persists trips with their seat maps.
//
// BookSeats is the only write allowed to touch seats after creation. It must
// flip every named seat to booked, attach the passenger and move the trip
// counters as one indivisible change, and only when all named seats are still
// available. Otherwise it changes nothing and returns ErrSeatsUnavailable.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	FindByRouteAndDate(ctx context.Context, source, destination string, from, to time.Time) ([]domain.Trip, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch domain.TripPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
	BookSeats(ctx context.Context, id uuid.UUID, seatNumbers []string, p domain.Passenger) error
	Ping(ctx context.Context) error
}
