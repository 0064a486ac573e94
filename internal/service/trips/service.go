package trips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/domain"
	"github.com/kirinyoku/busgo/internal/metrics"
	"github.com/kirinyoku/busgo/internal/repository"
	redisrepo "github.com/kirinyoku/busgo/internal/repository/redis"
)

// MaxSeats is the largest seat count a trip may have.
const MaxSeats = 100

const dateLayout = "2006-01-02"

type Config struct {
	TripTTL time.Duration
}

type Service struct {
	trips  repository.TripRepository
	cache  *redisrepo.Cache
	pubsub *redisrepo.TripsPubSub
	logger *slog.Logger
	cfg    Config
	now    func() time.Time
}

func New(
	trips repository.TripRepository,
	cache *redisrepo.Cache,
	pubsub *redisrepo.TripsPubSub,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.TripTTL <= 0 {
		cfg.TripTTL = 30 * time.Second
	}

	return &Service{
		trips:  trips,
		cache:  cache,
		pubsub: pubsub,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

type SeatInput struct {
	Number string
	Class  domain.SeatClass
	Price  float64
}

type CreateInput struct {
	BusNumber     string
	BusName       string
	BusType       domain.BusType
	Source        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	TotalSeats    int
	Seats         []SeatInput
}

// Create registers a trip. Without an explicit seat list the seat map is
// generated from the total seat count. Supplied seats always start out
// available.
//
// Returns:
//   - uuid.UUID: the created trip ID.
//   - error: trips.ErrInvalidSeatCount, trips.ErrInvalidBusType,
//     trips.ErrInvalidSchedule or trips.ErrInvalidSeatLayout on bad input.
func (s *Service) Create(ctx context.Context, in CreateInput) (uuid.UUID, error) {
	const op = "service.trips.Create"

	if in.TotalSeats <= 0 || in.TotalSeats > MaxSeats {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidSeatCount)
	}

	if !in.BusType.Valid() {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidBusType)
	}

	if in.ArrivalTime.Before(in.DepartureTime) {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidSchedule)
	}

	seats, err := buildSeats(in.TotalSeats, in.Seats)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	trip := &domain.Trip{
		ID:             uuid.New(),
		BusNumber:      in.BusNumber,
		BusName:        in.BusName,
		BusType:        in.BusType,
		Source:         in.Source,
		Destination:    in.Destination,
		DepartureTime:  in.DepartureTime,
		ArrivalTime:    in.ArrivalTime,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		BookedSeats:    0,
		Seats:          seats,
		CreatedAt:      s.now(),
	}

	id, err := s.trips.Create(ctx, trip)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	metrics.TripsCreated.Inc()
	s.logger.Info("trip created",
		slog.String("trip_id", id.String()),
		slog.String("bus_number", trip.BusNumber),
		slog.Int("total_seats", trip.TotalSeats),
	)

	return id, nil
}

// List returns every trip.
func (s *Service) List(ctx context.Context) ([]domain.Trip, error) {
	const op = "service.trips.List"

	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	return trips, nil
}

// Get retrieves a trip by its ID through the cache.
//
// Returns:
//   - *domain.Trip: the trip.
//   - error: trips.ErrTripNotFound if the trip is not found.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const op = "service.trips.Get"

	trip, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyTrip(id),
		s.cfg.TripTTL,
		func(ctx context.Context) (domain.Trip, error) {
			t, err := s.trips.Get(ctx, id)
			if err != nil {
				return domain.Trip{}, mapRepoErr(err)
			}

			return *t, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &trip, nil
}

// Search lists trips between source and destination (case-insensitive)
// departing on date, given as YYYY-MM-DD. A date that does not parse gives
// an empty result, the same as a search without matches.
func (s *Service) Search(ctx context.Context, source, destination, date string) ([]domain.Trip, error) {
	const op = "service.trips.Search"

	from, err := time.Parse(dateLayout, date)
	if err != nil {
		s.logger.Warn("search with malformed travel date",
			slog.String("travel_date", date),
			slog.String("error", err.Error()),
		)
		return []domain.Trip{}, nil
	}

	trips, err := s.trips.FindByRouteAndDate(ctx, source, destination, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	return trips, nil
}

// Update changes the descriptive fields of a trip. Seats and counters are
// never touched here.
//
// Returns:
//   - error: trips.ErrNothingToUpdate if the patch is empty.
//   - error: trips.ErrTripNotFound if the trip is not found.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch) error {
	const op = "service.trips.Update"

	if patch.Empty() {
		return fmt.Errorf("%s: %w", op, ErrNothingToUpdate)
	}

	if patch.BusType != nil && !patch.BusType.Valid() {
		return fmt.Errorf("%s: %w", op, ErrInvalidBusType)
	}

	if patch.DepartureTime != nil || patch.ArrivalTime != nil {
		current, err := s.trips.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, mapRepoErr(err))
		}
		patch.Apply(current)
		if current.ArrivalTime.Before(current.DepartureTime) {
			return fmt.Errorf("%s: %w", op, ErrInvalidSchedule)
		}
	}

	if err := s.trips.UpdateFields(ctx, id, patch); err != nil {
		return fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	s.tripChanged(ctx, id)

	return nil
}

// Delete removes a trip with its seats.
//
// Returns:
//   - error: trips.ErrTripNotFound if the trip is not found.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.trips.Delete"

	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	s.tripChanged(ctx, id)
	s.logger.Info("trip deleted", slog.String("trip_id", id.String()))

	return nil
}

// Ping reports whether the trip storage is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.trips.Ping(ctx)
}

func (s *Service) tripChanged(ctx context.Context, id uuid.UUID) {
	if err := s.cache.InvalidateTrip(ctx, id); err != nil {
		s.logger.Warn("trip cache invalidation failed",
			slog.String("trip_id", id.String()),
			slog.String("error", err.Error()),
		)
	}
	_ = s.pubsub.PublishTripChanged(ctx, id)
}

func buildSeats(total int, in []SeatInput) ([]domain.Seat, error) {
	if len(in) == 0 {
		return domain.GenerateSeats(total), nil
	}

	if len(in) != total {
		return nil, ErrInvalidSeatLayout
	}

	seen := make(map[string]struct{}, len(in))
	seats := make([]domain.Seat, 0, len(in))
	for _, si := range in {
		if si.Number == "" || si.Price <= 0 {
			return nil, ErrInvalidSeatLayout
		}
		if _, dup := seen[si.Number]; dup {
			return nil, ErrInvalidSeatLayout
		}
		seen[si.Number] = struct{}{}

		seats = append(seats, domain.Seat{
			Number: si.Number,
			Class:  si.Class,
			Price:  si.Price,
			Status: domain.SeatAvailable,
		})
	}

	return seats, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTripNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrTripConflict
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}
