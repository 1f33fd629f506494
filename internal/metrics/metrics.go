package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "barber_booking"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Booking metrics
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_created_total",
			Help: "Total number of bookings created",
		},
	)

	BookingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_conflicts_total",
			Help: "Total number of create/update attempts rejected for an occupied slot",
		},
	)

	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_transitions_total",
			Help: "Total number of status transitions by action",
		},
		[]string{"action"},
	)

	// Sweeper metrics
	BookingsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_expired_total",
			Help: "Total number of abandoned holds released by the sweeper",
		},
	)

	SweepFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_sweep_failures_total",
			Help: "Total number of holds the sweeper failed to release",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_sweep_duration_seconds",
			Help:    "Duration of sweeper passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Middleware records count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// ObserveSweep returns a func recording the duration since start.
func ObserveSweep() func() {
	start := time.Now()
	return func() {
		SweepDuration.Observe(time.Since(start).Seconds())
	}
}
