package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP(http.MethodGet, "/health", 200, time.Millisecond)
		m.BookingCreated("boarding")
		m.BookingTransition("pending", "accepted", "applied")
		m.AvailabilityFetchFailed("blocks")
		m.AvailabilityCache("hit")
		m.KafkaPublished("notifications", nil)
		m.KafkaConsumed("notifications", errors.New("x"))
		m.KafkaDuration("notifications", "publish", time.Millisecond)
		m.NotificationDispatched("booking_accepted", nil)
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BookingTransition("pending", "accepted", "applied")
	m.BookingTransition("pending", "accepted", "idempotent")
	m.BookingTransition("pending", "accepted", "applied")
	m.KafkaPublished("notifications", errors.New("broker down"))
	m.ObserveHTTP(http.MethodPost, "/api/v1/bookings", 201, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("pending", "accepted", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("pending", "accepted", "idempotent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kafkaPublished.WithLabelValues("notifications", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodPost, "/api/v1/bookings", "201")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["petsitter_booking_transitions_total"])
	assert.True(t, names["petsitter_http_request_duration_seconds"])
}
