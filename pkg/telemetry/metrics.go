package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bakery"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ordersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Order placement attempts by outcome.",
	}, []string{"outcome"})

	orderStatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "status_updates_total",
		Help:      "Order status changes by actor and target status.",
	}, []string{"actor", "status", "outcome"})

	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "total",
		Help:      "Background side-effect tasks by name and outcome.",
	}, []string{"task", "outcome"})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "duration_seconds",
		Help:      "Background task latency.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"task"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Order events delivered to a sink.",
	}, []string{"sink", "outcome"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// OrderPlaced records a placement attempt; reason is an error code or "success".
func OrderPlaced(reason string) {
	ordersPlaced.WithLabelValues(reason).Inc()
}

func OrderStatusUpdated(actor, status string, err error) {
	orderStatusUpdates.WithLabelValues(actor, status, outcome(err)).Inc()
}

func TaskFinished(task string, d time.Duration, err error) {
	tasksTotal.WithLabelValues(task, outcome(err)).Inc()
	taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

func TaskPanicked(task string) {
	tasksTotal.WithLabelValues(task, "panic").Inc()
}

func EventPublished(sink string, err error) {
	eventsPublished.WithLabelValues(sink, outcome(err)).Inc()
}
