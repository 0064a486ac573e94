// Package memory keeps trips in process memory. Each trip is stored as one
// document and every write happens under a single lock, which gives the
// same all-or-nothing guarantees as the postgres repository.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/domain"
	"github.com/kirinyoku/busgo/internal/repository"
)

type TripRepo struct {
	mu     sync.RWMutex
	trips  map[uuid.UUID]*domain.Trip
	closed bool
}

func NewTripRepo() *TripRepo {
	return &TripRepo{trips: make(map[uuid.UUID]*domain.Trip)}
}

// Close makes every later call fail with repository.ErrUnavailable.
func (r *TripRepo) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *TripRepo) Ping(ctx context.Context) error {
	const op = "memory.TripRepo.Ping"

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("%s: %w", op, repository.ErrUnavailable)
	}
	return nil
}

func (r *TripRepo) Create(ctx context.Context, trip *domain.Trip) (uuid.UUID, error) {
	const op = "memory.TripRepo.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return uuid.Nil, fmt.Errorf("%s: %w", op, repository.ErrUnavailable)
	}

	cp := trip.Clone()
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}

	if _, ok := r.trips[cp.ID]; ok {
		return uuid.Nil, fmt.Errorf("%s: %w", op, repository.ErrConflict)
	}

	r.trips[cp.ID] = cp

	return cp.ID, nil
}

func (r *TripRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const op = "memory.TripRepo.Get"

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrUnavailable)
	}

	t, ok := r.trips[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return t.Clone(), nil
}

func (r *TripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const op = "memory.TripRepo.List"

	return r.filter(op, func(*domain.Trip) bool { return true })
}

func (r *TripRepo) FindByRouteAndDate(
	ctx context.Context,
	source, destination string,
	from, to time.Time,
) ([]domain.Trip, error) {
	const op = "memory.TripRepo.FindByRouteAndDate"

	return r.filter(op, func(t *domain.Trip) bool {
		return strings.EqualFold(t.Source, source) &&
			strings.EqualFold(t.Destination, destination) &&
			!t.DepartureTime.Before(from) &&
			t.DepartureTime.Before(to)
	})
}

func (r *TripRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch domain.TripPatch) error {
	const op = "memory.TripRepo.UpdateFields"

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%s: %w", op, repository.ErrUnavailable)
	}

	t, ok := r.trips[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	patch.Apply(t)

	return nil
}

func (r *TripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "memory.TripRepo.Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%s: %w", op, repository.ErrUnavailable)
	}

	if _, ok := r.trips[id]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	delete(r.trips, id)

	return nil
}

// BookSeats books every named seat for the passenger, or none of them when
// any seat is missing or no longer available.
func (r *TripRepo) BookSeats(
	ctx context.Context,
	id uuid.UUID,
	seatNumbers []string,
	p domain.Passenger,
) error {
	const op = "memory.TripRepo.BookSeats"

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("%s: %w", op, repository.ErrUnavailable)
	}

	t, ok := r.trips[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	wanted := make(map[string]struct{}, len(seatNumbers))
	for _, n := range seatNumbers {
		wanted[n] = struct{}{}
	}

	idx := make([]int, 0, len(wanted))
	for i, s := range t.Seats {
		if _, ok := wanted[s.Number]; ok && s.Status == domain.SeatAvailable {
			idx = append(idx, i)
		}
	}

	if len(idx) != len(seatNumbers) {
		return fmt.Errorf("%s: %w", op, repository.ErrSeatsUnavailable)
	}

	for _, i := range idx {
		t.Seats[i].Status = domain.SeatBooked
		t.Seats[i].PassengerName = p.Name
		t.Seats[i].PassengerEmail = p.Email
	}

	t.AvailableSeats -= len(idx)
	t.BookedSeats += len(idx)

	return nil
}

func (r *TripRepo) filter(op string, keep func(*domain.Trip) bool) ([]domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrUnavailable)
	}

	out := []domain.Trip{}
	for _, t := range r.trips {
		if keep(t) {
			out = append(out, *t.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].DepartureTime.Before(out[j].DepartureTime)
	})

	return out, nil
}
