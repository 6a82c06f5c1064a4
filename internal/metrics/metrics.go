// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "playreply",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playreply",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "playreply",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	replyOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playreply",
			Subsystem: "lifecycle",
			Name:      "reply_operations_total",
			Help:      "Total number of reply lifecycle operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	workflowTriggers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playreply",
			Subsystem: "workflow",
			Name:      "triggers_total",
			Help:      "Total number of workflow engine triggers by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	billingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "playreply",
			Subsystem: "billing",
			Name:      "events_total",
			Help:      "Total number of billing webhook events by type and outcome.",
		},
		[]string{"event_type", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		replyOperations,
		workflowTriggers,
		billingEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler returns the /metrics HTTP handler for the application registry.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware returns a gin middleware recording request counts and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()

		c.Next()

		httpInFlight.Dec()

		// FullPath keeps cardinality bounded (route template, not raw URL).
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveReplyOperation records the outcome of a reply lifecycle operation.
func ObserveReplyOperation(operation, outcome string) {
	replyOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveWorkflowTrigger records the outcome of a workflow engine trigger.
func ObserveWorkflowTrigger(endpoint, outcome string) {
	workflowTriggers.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveBillingEvent records the outcome of a billing webhook event.
func ObserveBillingEvent(eventType, outcome string) {
	billingEvents.WithLabelValues(eventType, outcome).Inc()
}
