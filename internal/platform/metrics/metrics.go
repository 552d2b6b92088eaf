// Package metrics holds all Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application counters and histograms. Construction
// registers everything against the provided registry so tests can use
// isolated registries.
type Metrics struct {
	RegistrationsCreated prometheus.Counter
	LoginAttempts        *prometheus.CounterVec
	RateLimited          prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RegistrationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inova_registrations_created_total",
			Help: "Total number of registrations accepted.",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inova_login_attempts_total",
			Help: "Total number of admin login attempts by result.",
		}, []string{"result"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inova_rate_limited_total",
			Help: "Total number of requests rejected by rate limiting.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inova_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.RegistrationsCreated, m.LoginAttempts, m.RateLimited, m.RequestDuration)
	return m
}

// IncLoginAttempt records one login attempt with the given result label
// ("success" or "failure").
func (m *Metrics) IncLoginAttempt(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}
