package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking outcome labels.
const (
	OutcomeBooked    = "booked"
	OutcomeConflict  = "conflict"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
	OutcomeForbidden = "forbidden"
)

// Login result labels.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginBlocked = "blocked"
)

// Metrics holds all application metrics
type Metrics struct {
	// Booking metrics
	BookingOutcomes *prometheus.CounterVec

	// Auth metrics
	LoginAttempts *prometheus.CounterVec

	// Calendar cache metrics
	CacheLookups *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// NewMetrics creates all application metrics and registers them with reg.
// Pass prometheus.NewRegistry() in tests to keep registrations isolated.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "outcomes_total",
			Help:      "Appointment booking and cancellation outcomes",
		}, []string{"outcome"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by role and result",
		}, []string{"role", "result"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar_cache",
			Name:      "lookups_total",
			Help:      "Calendar cache lookups by result",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
	}
}

// NewNopMetrics registers against a private registry, for tests and tools that never expose /metrics.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry(), "clinic")
}

func (m *Metrics) RecordBooking(outcome string) {
	m.BookingOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLogin(role, result string) {
	m.LoginAttempts.WithLabelValues(role, result).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
