package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/busgo/internal/config"
	"github.com/kirinyoku/busgo/internal/postgres"
	"github.com/kirinyoku/busgo/internal/redis"
	"github.com/kirinyoku/busgo/internal/repository"
	"github.com/kirinyoku/busgo/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/busgo/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/busgo/internal/repository/redis"
	"github.com/kirinyoku/busgo/internal/service"
	"github.com/kirinyoku/busgo/internal/service/booking"
	"github.com/kirinyoku/busgo/internal/service/trips"
	httpgin "github.com/kirinyoku/busgo/internal/transport/http/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	memRepo    *memory.TripRepo
	cache      *redisrepo.Cache
	pubsub     *redisrepo.TripsPubSub
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	repo, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	var (
		limiter booking.Limiter
		idem    *redisrepo.IdempotencyStore
	)

	if cfg.Redis.Enabled() {
		a.rdb, err = redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}

		a.cache = redisrepo.New(a.rdb)
		a.pubsub = redisrepo.NewTripsPubSub(a.rdb)
		idem = redisrepo.NewIdempotencyStore(a.rdb, cfg.Booking.IdempotencyTTL)
		if cfg.Booking.RateLimitPerMinute > 0 {
			limiter = redisrepo.NewSlidingWindowLimiter(a.rdb, "book", cfg.Booking.RateLimitPerMinute, time.Minute)
		}
	} else {
		logger.Warn("redis disabled, running without cache, rate limiting and idempotency keys")
	}

	services := service.NewServices(repo, a.cache, a.pubsub, limiter, logger, service.Config{
		Trips: trips.Config{TripTTL: cfg.Booking.TripCacheTTL},
	})

	router := httpgin.NewRouter(services, idem, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

func (a *App) openStorage(ctx context.Context) (repository.TripRepository, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory storage, data is lost on restart")
		a.memRepo = memory.NewTripRepo()
		return a.memRepo, nil
	default:
		pool, err := postgres.New(ctx, postgres.Config{
			DSN:      a.cfg.Postgres.DSN(),
			MaxConns: a.cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.pool = pool

		store := postgresrepo.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}

		return store.Trips(), nil
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.pubsub != nil {
		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, tripID uuid.UUID) {
				if err := a.cache.InvalidateTrip(ctx, tripID); err != nil {
					a.logger.Warn("trip cache invalidation failed",
						slog.String("trip_id", tripID.String()),
						slog.String("error", err.Error()),
					)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("trip change subscription: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("closing redis", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.memRepo != nil {
		a.memRepo.Close()
	}
}
