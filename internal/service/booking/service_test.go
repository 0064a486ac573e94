package booking_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/domain"
	"github.com/kirinyoku/busgo/internal/repository/memory"
	"github.com/kirinyoku/busgo/internal/service/booking"
	"github.com/kirinyoku/busgo/internal/service/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	allow bool
	retry time.Duration
	err   error
	calls []string
}

func (f *fakeLimiter) Allow(_ context.Context, id string) (bool, time.Duration, error) {
	f.calls = append(f.calls, id)
	return f.allow, f.retry, f.err
}

func newService(repo *memory.TripRepo, limiter booking.Limiter) *booking.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return booking.New(reservation.New(repo), repo, nil, nil, limiter, logger)
}

func seedTrip(t *testing.T, repo *memory.TripRepo) uuid.UUID {
	t.Helper()

	id, err := repo.Create(context.Background(), &domain.Trip{
		BusNumber:      "BUS001",
		BusName:        "Express Travels",
		BusType:        domain.BusAC,
		Source:         "NYC",
		Destination:    "Boston",
		DepartureTime:  time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		ArrivalTime:    time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC),
		TotalSeats:     40,
		AvailableSeats: 40,
		Seats:          domain.GenerateSeats(40),
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	return id
}

func TestBookTickets_Confirmed(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	id := seedTrip(t, repo)

	b, err := newService(repo, nil).BookTickets(ctx, booking.Request{
		TripID:         id,
		SeatNumbers:    []string{"A1", "A2"},
		PassengerName:  "John Doe",
		PassengerEmail: "john@example.com",
		PassengerPhone: "+1234567890",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, id, b.TripID)
	assert.Equal(t, "BUS001", b.BusNumber)
	assert.Equal(t, "NYC", b.Source)
	assert.Equal(t, "Boston", b.Destination)
	assert.Equal(t, []string{"A1", "A2"}, b.SeatNumbers)
	assert.Equal(t, "+1234567890", b.PassengerPhone)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.InDelta(t, 1000.0, b.TotalAmount, 0.001)
	assert.False(t, b.BookedAt.IsZero())

	trip, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 38, trip.AvailableSeats)
	assert.Equal(t, 2, trip.BookedSeats)
}

func TestBookTickets_SecondBookingOfSameSeatFails(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	id := seedTrip(t, repo)
	svc := newService(repo, nil)

	req := booking.Request{TripID: id, SeatNumbers: []string{"A1"}, PassengerName: "John Doe"}

	_, err := svc.BookTickets(ctx, req)
	require.NoError(t, err)

	_, err = svc.BookTickets(ctx, req)
	require.ErrorIs(t, err, reservation.ErrSeatUnavailable)
	assert.Contains(t, err.Error(), "seat A1 is not available")
}

func TestBookTickets_EngineErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	id := seedTrip(t, repo)
	svc := newService(repo, nil)

	_, err := svc.BookTickets(ctx, booking.Request{TripID: uuid.New(), SeatNumbers: []string{"A1"}})
	assert.ErrorIs(t, err, reservation.ErrTripNotFound)

	_, err = svc.BookTickets(ctx, booking.Request{TripID: id, SeatNumbers: []string{"Z9"}})
	assert.ErrorIs(t, err, reservation.ErrSeatNotFound)

	_, err = svc.BookTickets(ctx, booking.Request{TripID: id})
	assert.ErrorIs(t, err, reservation.ErrNoSeatsRequested)

	trip, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 40, trip.AvailableSeats)
}

func TestBookTickets_RateLimited(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	id := seedTrip(t, repo)
	limiter := &fakeLimiter{allow: false, retry: 3 * time.Second}

	_, err := newService(repo, limiter).BookTickets(ctx, booking.Request{
		TripID:       id,
		SeatNumbers:  []string{"A1"},
		RateLimitKey: "10.0.0.1",
	})
	require.ErrorIs(t, err, booking.ErrRateLimited)

	var rl booking.RateLimitedError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 3*time.Second, rl.RetryAfter)
	assert.Equal(t, []string{"10.0.0.1"}, limiter.calls)

	trip, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 40, trip.AvailableSeats)
}

func TestBookTickets_LimiterSkippedWithoutKey(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	id := seedTrip(t, repo)
	limiter := &fakeLimiter{allow: false}

	_, err := newService(repo, limiter).BookTickets(ctx, booking.Request{
		TripID:      id,
		SeatNumbers: []string{"A1"},
	})
	require.NoError(t, err)
	assert.Empty(t, limiter.calls)
}

func TestBookTickets_LimiterErrorAdmitsRequest(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	id := seedTrip(t, repo)
	limiter := &fakeLimiter{err: errors.New("redis down")}

	b, err := newService(repo, limiter).BookTickets(ctx, booking.Request{
		TripID:       id,
		SeatNumbers:  []string{"A1"},
		RateLimitKey: "10.0.0.1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1"}, limiter.calls)
	assert.Equal(t, []string{"A1"}, b.SeatNumbers)

	trip, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 39, trip.AvailableSeats)
}

func TestTotalPrice(t *testing.T) {
	trip := &domain.Trip{Seats: []domain.Seat{
		{Number: "A1", Price: 500},
		{Number: "A2", Price: 650},
		{Number: "A3", Price: 500},
	}}

	assert.InDelta(t, 1150.0, booking.TotalPrice(trip, []string{"A1", "A2"}), 0.001)
	assert.InDelta(t, 500.0, booking.TotalPrice(trip, []string{"A1", "A1"}), 0.001)
	assert.Zero(t, booking.TotalPrice(trip, nil))
}

func TestBookTickets_DuplicateSeatsBookedOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	id := seedTrip(t, repo)

	b, err := newService(repo, nil).BookTickets(ctx, booking.Request{
		TripID:      id,
		SeatNumbers: []string{"B2", "B2"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"B2"}, b.SeatNumbers)
	assert.InDelta(t, 500.0, b.TotalAmount, 0.001)
}
