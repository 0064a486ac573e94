package booking

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
	"github.com/kirinyoku/busgo/internal/service/reservation"
)

// Limiter decides whether the caller identified by id may book now.
type Limiter interface {
	Allow(ctx context.Context, id string) (bool, time.Duration, error)
}

type Service struct {
	engine  *reservation.Service
	trips   repository.TripRepository
	cache   *redisrepo.Cache
	pubsub  *redisrepo.TripsPubSub
	limiter Limiter
	logger  *slog.Logger
	now     func() time.Time
}

func New(
	engine *reservation.Service,
	trips repository.TripRepository,
	cache *redisrepo.Cache,
	pubsub *redisrepo.TripsPubSub,
	limiter Limiter,
	logger *slog.Logger,
) *Service {
	return &Service{
		engine:  engine,
		trips:   trips,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

type Request struct {
	TripID         uuid.UUID
	SeatNumbers    []string
	PassengerName  string
	PassengerEmail string
	PassengerPhone string
	// RateLimitKey identifies the caller for rate limiting; empty skips it.
	RateLimitKey string
}

// BookTickets books the requested seats and returns the confirmed booking.
// Failures from the reservation engine are returned as they are and never
// retried: a taken seat is an answer, not a fault.
//
// Parameters:
//   - ctx: request-scoped context.
//   - req: trip, seats and passenger contact details.
//
// Returns:
//   - *domain.Booking: the confirmed booking priced at the sum of its seats.
//   - error: booking.ErrRateLimited if the caller exceeded the booking rate.
//   - error: any reservation engine error (reservation.ErrTripNotFound,
//     reservation.ErrSeatNotFound, reservation.ErrSeatUnavailable,
//     reservation.ErrBookingConflict, reservation.ErrStorageUnavailable).
func (s *Service) BookTickets(ctx context.Context, req Request) (*domain.Booking, error) {
	const op = "service.booking.BookTickets"

	if s.limiter != nil && req.RateLimitKey != "" {
		ok, retry, err := s.limiter.Allow(ctx, req.RateLimitKey)
		if err != nil {
			// Fail open: an unreachable limiter must not block bookings.
			s.logger.Warn("rate limiter unavailable, admitting request",
				slog.String("key", req.RateLimitKey),
				slog.String("error", err.Error()),
			)
		} else if !ok {
			metrics.BookingsTotal.WithLabelValues("rate_limited").Inc()
			return nil, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: retry})
		}
	}

	snapshot, err := s.engine.Book(ctx, req.TripID, req.SeatNumbers, domain.Passenger{
		Name:  req.PassengerName,
		Email: req.PassengerEmail,
	})
	if err != nil {
		metrics.BookingsTotal.WithLabelValues(outcome(err)).Inc()
		s.logger.Info("booking rejected",
			slog.String("trip_id", req.TripID.String()),
			slog.Any("seats", req.SeatNumbers),
			slog.String("reason", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seats := reservation.Distinct(req.SeatNumbers)
	s.afterBooking(ctx, req.TripID)

	trip, err := s.trips.Get(ctx, req.TripID)
	if err != nil {
		// The seats are committed; prices never change, so the snapshot
		// prices the booking just as well.
		s.logger.Warn("re-reading booked trip failed, pricing from snapshot",
			slog.String("trip_id", req.TripID.String()),
			slog.String("error", err.Error()),
		)
		trip = snapshot
	}

	b := &domain.Booking{
		ID:             uuid.New(),
		TripID:         trip.ID,
		BusNumber:      trip.BusNumber,
		Source:         trip.Source,
		Destination:    trip.Destination,
		DepartureTime:  trip.DepartureTime,
		SeatNumbers:    seats,
		PassengerName:  req.PassengerName,
		PassengerEmail: req.PassengerEmail,
		PassengerPhone: req.PassengerPhone,
		TotalAmount:    TotalPrice(trip, seats),
		Status:         domain.BookingConfirmed,
		BookedAt:       s.now(),
	}

	metrics.BookingsTotal.WithLabelValues("confirmed").Inc()
	metrics.SeatsBooked.Add(float64(len(seats)))
	s.logger.Info("booking confirmed",
		slog.String("booking_id", b.ID.String()),
		slog.String("trip_id", b.TripID.String()),
		slog.Any("seats", b.SeatNumbers),
		slog.Float64("total_amount", b.TotalAmount),
	)

	return b, nil
}

// TotalPrice sums the prices of the named seats. Each seat counts once.
func TotalPrice(trip *domain.Trip, seatNumbers []string) float64 {
	wanted := make(map[string]struct{}, len(seatNumbers))
	for _, n := range seatNumbers {
		wanted[n] = struct{}{}
	}

	var total float64
	for _, seat := range trip.Seats {
		if _, ok := wanted[seat.Number]; ok {
			total += seat.Price
		}
	}

	return total
}

func (s *Service) afterBooking(ctx context.Context, tripID uuid.UUID) {
	if err := s.cache.InvalidateTrip(ctx, tripID); err != nil {
		s.logger.Warn("trip cache invalidation failed",
			slog.String("trip_id", tripID.String()),
			slog.String("error", err.Error()),
		)
	}
	_ = s.pubsub.PublishTripChanged(ctx, tripID)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, reservation.ErrTripNotFound):
		return "trip_not_found"
	case errors.Is(err, reservation.ErrSeatNotFound):
		return "seat_not_found"
	case errors.Is(err, reservation.ErrSeatUnavailable):
		return "seat_unavailable"
	case errors.Is(err, reservation.ErrBookingConflict):
		return "conflict"
	case errors.Is(err, reservation.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, reservation.ErrNoSeatsRequested):
		return "invalid"
	}
	return "error"
}
