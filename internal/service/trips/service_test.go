package trips_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/domain"
	"github.com/kirinyoku/busgo/internal/repository/memory"
	redisrepo "github.com/kirinyoku/busgo/internal/repository/redis"
	"github.com/kirinyoku/busgo/internal/service/trips"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func tripInput(source, destination string, departure time.Time) trips.CreateInput {
	return trips.CreateInput{
		BusNumber:     "BUS001",
		BusName:       "Express Travels",
		BusType:       domain.BusAC,
		Source:        source,
		Destination:   destination,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(4 * time.Hour),
		TotalSeats:    40,
	}
}

func TestCreate_GeneratesSeats(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	svc := trips.New(repo, nil, nil, discard, trips.Config{})

	id, err := svc.Create(ctx, tripInput("NYC", "Boston", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	trip, err := svc.Get(ctx, id)
	require.NoError(t, err)

	assert.Len(t, trip.Seats, 40)
	assert.Equal(t, 40, trip.AvailableSeats)
	assert.Zero(t, trip.BookedSeats)
	assert.Equal(t, "A1", trip.Seats[0].Number)
	assert.False(t, trip.CreatedAt.IsZero())
}

func TestCreate_SuppliedSeatsAreNormalized(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	svc := trips.New(repo, nil, nil, discard, trips.Config{})

	in := tripInput("NYC", "Boston", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	in.TotalSeats = 2
	in.Seats = []trips.SeatInput{
		{Number: "S1", Class: domain.SeatWindow, Price: 750},
		{Number: "S2", Class: domain.SeatAisle, Price: 650},
	}

	id, err := svc.Create(ctx, in)
	require.NoError(t, err)

	trip, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, trip.Seats, 2)
	for _, s := range trip.Seats {
		assert.Equal(t, domain.SeatAvailable, s.Status)
		assert.Empty(t, s.PassengerName)
	}
	assert.Equal(t, 750.0, trip.Seats[0].Price)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := trips.New(memory.NewTripRepo(), nil, nil, discard, trips.Config{})
	dep := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	in := tripInput("NYC", "Boston", dep)
	in.TotalSeats = 101
	_, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, trips.ErrInvalidSeatCount)

	in = tripInput("NYC", "Boston", dep)
	in.BusType = "hovercraft"
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, trips.ErrInvalidBusType)

	in = tripInput("NYC", "Boston", dep)
	in.ArrivalTime = dep.Add(-time.Hour)
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, trips.ErrInvalidSchedule)

	in = tripInput("NYC", "Boston", dep)
	in.TotalSeats = 2
	in.Seats = []trips.SeatInput{
		{Number: "A1", Class: domain.SeatWindow, Price: 500},
		{Number: "A1", Class: domain.SeatAisle, Price: 500},
	}
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, trips.ErrInvalidSeatLayout)

	in.Seats = in.Seats[:1]
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, trips.ErrInvalidSeatLayout)
}

func TestSearch_RouteAndDay(t *testing.T) {
	ctx := context.Background()
	svc := trips.New(memory.NewTripRepo(), nil, nil, discard, trips.Config{})

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	want, err := svc.Create(ctx, tripInput("nyc", "BOSTON", day.Add(9*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, tripInput("NYC", "Boston", day.Add(24*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, tripInput("NYC", "Albany", day.Add(10*time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, tripInput("NYC", "Boston", day.Add(-time.Minute)))
	require.NoError(t, err)

	got, err := svc.Search(ctx, "NYC", "Boston", "2024-01-15")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0].ID)

	got, err = svc.Search(ctx, "NYC", "Chicago", "2024-01-15")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_MalformedDateIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := trips.New(memory.NewTripRepo(), nil, nil, discard, trips.Config{})

	_, err := svc.Create(ctx, tripInput("NYC", "Boston", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	for _, date := range []string{"15-01-2024", "2024-13-01", "", "tomorrow"} {
		got, err := svc.Search(ctx, "NYC", "Boston", date)
		require.NoError(t, err, date)
		assert.Empty(t, got, date)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTripRepo()
	svc := trips.New(repo, nil, nil, discard, trips.Config{})

	dep := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	id, err := svc.Create(ctx, tripInput("NYC", "Boston", dep))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Update(ctx, id, domain.TripPatch{}), trips.ErrNothingToUpdate)

	bad := domain.BusType("rocket")
	assert.ErrorIs(t, svc.Update(ctx, id, domain.TripPatch{BusType: &bad}), trips.ErrInvalidBusType)

	early := dep.Add(-time.Hour)
	assert.ErrorIs(t, svc.Update(ctx, id, domain.TripPatch{ArrivalTime: &early}), trips.ErrInvalidSchedule)

	name := "Night Liner"
	sleeper := domain.BusSleeper
	require.NoError(t, svc.Update(ctx, id, domain.TripPatch{BusName: &name, BusType: &sleeper}))

	trip, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Night Liner", trip.BusName)
	assert.Equal(t, domain.BusSleeper, trip.BusType)
	assert.Equal(t, "NYC", trip.Source)
	assert.Len(t, trip.Seats, 40)

	assert.ErrorIs(t, svc.Update(ctx, uuid.New(), domain.TripPatch{BusName: &name}), trips.ErrTripNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := trips.New(memory.NewTripRepo(), nil, nil, discard, trips.Config{})

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), trips.ErrTripNotFound)

	id, err := svc.Create(ctx, tripInput("NYC", "Boston", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, trips.ErrTripNotFound)
}

func TestGet_ServedFromCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := redisrepo.New(db)
	svc := trips.New(memory.NewTripRepo(), cache, nil, discard, trips.Config{})

	id := uuid.New()
	cached := domain.Trip{ID: id, BusNumber: "BUS009", Source: "NYC", Destination: "Boston", TotalSeats: 4}
	b, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet(redisrepo.KeyTrip(id)).SetVal(string(b))

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "BUS009", got.BusNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	repo := memory.NewTripRepo()
	svc := trips.New(repo, redisrepo.New(db), nil, discard, trips.Config{})

	id, err := repo.Create(ctx, &domain.Trip{BusNumber: "BUS001", TotalSeats: 4, AvailableSeats: 4,
		Seats: domain.GenerateSeats(4)})
	require.NoError(t, err)

	mock.ExpectDel(redisrepo.KeyTrip(id)).SetVal(1)

	require.NoError(t, svc.Delete(ctx, id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageUnavailable(t *testing.T) {
	repo := memory.NewTripRepo()
	repo.Close()
	svc := trips.New(repo, nil, nil, discard, trips.Config{})

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, trips.ErrStorageUnavailable)
	assert.Error(t, svc.Ping(context.Background()))
}
