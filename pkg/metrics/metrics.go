package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "petsitter"

// Metrics holds every collector a service exports. A nil *Metrics is valid
// and records nothing, so tests and tools can skip registration.
type Metrics struct {
	httpRequests            *prometheus.CounterVec
	httpDuration            *prometheus.HistogramVec
	bookingsCreated         *prometheus.CounterVec
	bookingTransitions      *prometheus.CounterVec
	availabilityFailures    *prometheus.CounterVec
	availabilityCache       *prometheus.CounterVec
	kafkaPublished          *prometheus.CounterVec
	kafkaConsumed           *prometheus.CounterVec
	kafkaHandlerDuration    *prometheus.HistogramVec
	notificationsDispatched *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Booking requests created, by service type",
		}, []string{"service_type"}),
		bookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by outcome",
		}, []string{"from", "to", "result"}),
		availabilityFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_fetch_failures_total",
			Help:      "Availability reads that failed closed, by source",
		}, []string{"source"}),
		availabilityCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_cache_total",
			Help:      "Availability cache lookups by result",
		}, []string{"result"}),
		kafkaPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Kafka messages published by topic and status",
		}, []string{"topic", "status"}),
		kafkaConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "messages_consumed_total",
			Help:      "Kafka messages consumed by topic and status",
		}, []string{"topic", "status"}),
		kafkaHandlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "handler_duration_seconds",
			Help:      "Kafka publish and consume handler latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic", "direction"}),
		notificationsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Notifications handed to the sink, by type and status",
		}, []string{"type", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.bookingsCreated, m.bookingTransitions,
		m.availabilityFailures, m.availabilityCache,
		m.kafkaPublished, m.kafkaConsumed, m.kafkaHandlerDuration,
		m.notificationsDispatched,
	)
	return m
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) BookingCreated(serviceType string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(serviceType).Inc()
}

// BookingTransition records one attempted transition. result is one of
// "applied", "idempotent", "conflict", "rejected".
func (m *Metrics) BookingTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.bookingTransitions.WithLabelValues(from, to, result).Inc()
}

func (m *Metrics) AvailabilityFetchFailed(source string) {
	if m == nil {
		return
	}
	m.availabilityFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) AvailabilityCache(result string) {
	if m == nil {
		return
	}
	m.availabilityCache.WithLabelValues(result).Inc()
}

func (m *Metrics) KafkaPublished(topic string, err error) {
	if m == nil {
		return
	}
	m.kafkaPublished.WithLabelValues(topic, statusLabel(err)).Inc()
}

func (m *Metrics) KafkaConsumed(topic string, err error) {
	if m == nil {
		return
	}
	m.kafkaConsumed.WithLabelValues(topic, statusLabel(err)).Inc()
}

func (m *Metrics) KafkaDuration(topic, direction string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.kafkaHandlerDuration.WithLabelValues(topic, direction).Observe(elapsed.Seconds())
}

func (m *Metrics) NotificationDispatched(notificationType string, err error) {
	if m == nil {
		return
	}
	m.notificationsDispatched.WithLabelValues(notificationType, statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
