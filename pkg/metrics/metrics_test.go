package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "test")

	m.RecordBooking(OutcomeBooked)
	m.RecordBooking(OutcomeBooked)
	m.RecordBooking(OutcomeConflict)
	m.RecordLogin("admin", LoginBlocked)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingOutcomes.WithLabelValues(OutcomeBooked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingOutcomes.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("admin", LoginBlocked)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNopMetrics()
		NewNopMetrics()
	})
}
