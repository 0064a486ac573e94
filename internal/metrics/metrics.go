package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "busgo",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "busgo",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Booking metrics
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "busgo",
		Subsystem: "booking",
		Name:      "attempts_total",
		Help:      "Booking attempts by outcome",
	}, []string{"outcome"})

	SeatsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "busgo",
		Subsystem: "booking",
		Name:      "seats_booked_total",
		Help:      "Total seats moved from available to booked",
	})

	TripsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "busgo",
		Subsystem: "trips",
		Name:      "created_total",
		Help:      "Total trips registered",
	})
)

// Middleware records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
