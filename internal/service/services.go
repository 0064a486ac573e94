package service

import (
	"log/slog"

	"github.com/kirinyoku/busgo/internal/repository"
	redisrepo "github.com/kirinyoku/busgo/internal/repository/redis"
	"github.com/kirinyoku/busgo/internal/service/booking"
	"github.com/kirinyoku/busgo/internal/service/reservation"
	"github.com/kirinyoku/busgo/internal/service/trips"
)

type Services struct {
	Reservation *reservation.Service
	Trips       *trips.Service
	Booking     *booking.Service
}

type Config struct {
	Trips trips.Config
}

// NewServices wires the services over one trip repository. cache, pubsub
// and limiter may be nil when redis is disabled.
func NewServices(
	repo repository.TripRepository,
	cache *redisrepo.Cache,
	pubsub *redisrepo.TripsPubSub,
	limiter booking.Limiter,
	logger *slog.Logger,
	cfg Config,
) *Services {
	engine := reservation.New(repo)

	return &Services{
		Reservation: engine,
		Trips:       trips.New(repo, cache, pubsub, logger, cfg.Trips),
		Booking:     booking.New(engine, repo, cache, pubsub, limiter, logger),
	}
}
