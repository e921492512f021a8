// Package metrics defines the Prometheus metrics of the auth subsystem.
//
// Metric naming follows Prometheus conventions:
//   - gymauth_ prefix for all custom metrics
//   - _total suffix for counters
package metrics

import (
	"net/http"

	"github.com/gymcoach/gymauth/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple instances never
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	// AuthenticationsTotal counts authenticated requests by outcome
	// ("success" or the error code).
	AuthenticationsTotal *prometheus.CounterVec

	// LoginsTotal counts login attempts by result.
	LoginsTotal *prometheus.CounterVec

	// RegistrationsTotal counts registration attempts by result.
	RegistrationsTotal *prometheus.CounterVec
}

var _ core.Observer = (*Metrics)(nil)

// New creates the metrics and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AuthenticationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymauth_authentications_total",
				Help: "Total request authentications by outcome.",
			},
			[]string{"outcome"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymauth_logins_total",
				Help: "Total login attempts by result.",
			},
			[]string{"result"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymauth_registrations_total",
				Help: "Total registration attempts by result.",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.AuthenticationsTotal,
		m.LoginsTotal,
		m.RegistrationsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveAuthentication(outcome string) {
	m.AuthenticationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRegistration(result string) {
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
