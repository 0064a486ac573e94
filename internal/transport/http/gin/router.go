package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/busgo/internal/metrics"
	redisrepo "github.com/kirinyoku/busgo/internal/repository/redis"
	"github.com/kirinyoku/busgo/internal/service"
	"github.com/kirinyoku/busgo/internal/service/booking"
	"github.com/kirinyoku/busgo/internal/service/reservation"
	"github.com/kirinyoku/busgo/internal/service/trips"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	apiVersion      = "1.0.0"
	idemLockTTL     = 60 * time.Second
	healthTimeout   = 2 * time.Second
	contentTypeJSON = "application/json; charset=utf-8"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), metrics.Middleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", metrics.Handler())

	r.GET("/", handleRoot(svcs))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health", handleHealth(svcs))

	tripsGroup := r.Group("/trips")
	{
		tripsGroup.POST("", handleCreateTrip(svcs))
		tripsGroup.GET("", handleListTrips(svcs))
		tripsGroup.GET("/search", handleSearchTrips(svcs))
		tripsGroup.GET("/:id", handleGetTrip(svcs))
		tripsGroup.PUT("/:id", handleUpdateTrip(svcs))
		tripsGroup.PATCH("/:id", handleUpdateTrip(svcs))
		tripsGroup.DELETE("/:id", handleDeleteTrip(svcs))
		tripsGroup.POST("/:id/book", handleBookTickets(svcs, idem))
	}

	return r
}

// @Summary  Service banner
// @Success  200  {object}  RootResponse
// @Router   / [get]
func handleRoot(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, RootResponse{
			Message:        "Welcome to Bus Ticket Booking API",
			Docs:           "Visit /swagger/index.html for Swagger UI",
			Version:        apiVersion,
			DatabaseStatus: databaseStatus(c.Request.Context(), svcs),
		})
	}
}

// @Summary  Health check with storage status
// @Success  200  {object}  HealthResponse
// @Failure  503  {object}  HealthResponse
// @Router   /health [get]
func handleHealth(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := databaseStatus(c.Request.Context(), svcs)
		if db != "connected" {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: db})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Database: db})
	}
}

// @Summary  Create trip
// @Param    req  body  CreateTripRequest  true  "payload"
// @Success  201  {object}  CreateTripResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /trips [post]
func handleCreateTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTripRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Trips.Create(c.Request.Context(), req.toInput())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, CreateTripResponse{
			ID:      id.String(),
			Message: "Trip created successfully",
		})
	}
}

// @Summary  List trips
// @Success  200  {array}  TripView
// @Router   /trips [get]
func handleListTrips(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Trips.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toTripViews(list))
	}
}

// @Summary  Search trips by route and travel date
// @Param    source       query  string  true  "Source city"
// @Param    destination  query  string  true  "Destination city"
// @Param    travel_date  query  string  true  "Travel date (YYYY-MM-DD)"
// @Success  200  {array}  TripView
// @Failure  400  {object}  ErrorResponse
// @Router   /trips/search [get]
func handleSearchTrips(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q SearchTripsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		list, err := svcs.Trips.Search(c.Request.Context(), q.Source, q.Destination, q.TravelDate)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toTripViews(list))
	}
}

// @Summary  Get trip with its seat map
// @Param    id  path  string  true  "Trip ID (uuid)"
// @Success  200  {object}  TripView
// @Failure  404  {object}  ErrorResponse
// @Router   /trips/{id} [get]
func handleGetTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseTripID(c)
		if !ok {
			return
		}

		trip, err := svcs.Trips.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithETag(c, http.StatusOK, toTripView(trip), "no-cache")
	}
}

// @Summary  Update trip details
// @Param    id   path  string             true  "Trip ID (uuid)"
// @Param    req  body  UpdateTripRequest  true  "payload"
// @Success  200  {object}  MessageResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /trips/{id} [put]
func handleUpdateTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseTripID(c)
		if !ok {
			return
		}

		var req UpdateTripRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := svcs.Trips.Update(c.Request.Context(), id, req.toPatch()); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "Trip updated successfully"})
	}
}

// @Summary  Delete trip
// @Param    id  path  string  true  "Trip ID (uuid)"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Router   /trips/{id} [delete]
func handleDeleteTrip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseTripID(c)
		if !ok {
			return
		}

		if err := svcs.Trips.Delete(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// @Summary  Book tickets (idempotent)
// @Param    id   path  string              true  "Trip ID (uuid)"
// @Param    req  body  BookTicketsRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  BookingView
// @Failure  400  {object}  ErrorResponse  "validation / unknown seat"
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "seat unavailable / idem in progress"
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Failure  503  {object}  ErrorResponse
// @Router   /trips/{id}/book [post]
func handleBookTickets(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := parseTripID(c)
		if !ok {
			return
		}

		var req BookTicketsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(tripID, idemKey)

			if replayed := replayIdempotent(c, idem, idemStorageKey, idemKey); replayed {
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if replayed := replayIdempotent(c, idem, idemStorageKey, idemKey); replayed {
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		b, err := svcs.Booking.BookTickets(ctx, booking.Request{
			TripID:         tripID,
			SeatNumbers:    req.SeatNumbers,
			PassengerName:  req.PassengerName,
			PassengerEmail: req.PassengerEmail,
			PassengerPhone: req.PassengerPhone,
			RateLimitKey:   "ip:" + c.ClientIP(),
		})
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(ctx, idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := toBookingView(b)

		if idemStorageKey != "" {
			payload, _ := json.Marshal(resp)
			_ = idem.SaveResult(ctx, idemStorageKey, string(payload))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// --- Helpers ---

func replayIdempotent(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey, idemKey string) bool {
	payload, ok, _ := idem.GetResult(c.Request.Context(), storageKey)
	if !ok {
		return false
	}
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, contentTypeJSON, []byte(payload))
	return true
}

// parseTripID reads the trip id path parameter. A value that is not a UUID
// cannot name any trip, so it is answered with 404.
func parseTripID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "trip not found"})
		return uuid.Nil, false
	}
	return id, true
}

func databaseStatus(ctx context.Context, svcs *service.Services) string {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := svcs.Trips.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var rl booking.RateLimitedError
	var seatNotFound reservation.SeatNotFoundError
	var seatUnavailable reservation.SeatUnavailableError

	switch {
	// booking
	case errors.As(err, &rl):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
	// reservation
	case errors.Is(err, reservation.ErrTripNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "trip not found"})
	case errors.As(err, &seatNotFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: seatNotFound.Error()})
	case errors.As(err, &seatUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: seatUnavailable.Error()})
	case errors.Is(err, reservation.ErrNoSeatsRequested):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no seats requested"})
	case errors.Is(err, reservation.ErrBookingConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seats were booked by another request"})
	case errors.Is(err, reservation.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
	// trips
	case errors.Is(err, trips.ErrTripNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "trip not found"})
	case errors.Is(err, trips.ErrInvalidBusType),
		errors.Is(err, trips.ErrInvalidSeatCount),
		errors.Is(err, trips.ErrInvalidSeatLayout),
		errors.Is(err, trips.ErrInvalidSchedule),
		errors.Is(err, trips.ErrNothingToUpdate):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: rootMessage(err)})
	case errors.Is(err, trips.ErrTripConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "trip already exists"})
	case errors.Is(err, trips.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// rootMessage strips the op prefixes from a wrapped error message.
func rootMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
