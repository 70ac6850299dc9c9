package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TransitionsTotal      *prometheus.CounterVec
	TransitionFailures    *prometheus.CounterVec
	AvailabilityChecks    *prometheus.CounterVec
	AvailabilityCacheHits prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_domain_transitions_total",
			Help: "Total successful domain lifecycle transitions, by event",
		}, []string{"event"}),
		TransitionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_domain_transition_failures_total",
			Help: "Total failed domain lifecycle transitions, by event",
		}, []string{"event"}),
		AvailabilityChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_domain_availability_checks_total",
			Help: "Total domain availability checks, by result",
		}, []string{"result"}),
		AvailabilityCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_domain_availability_cache_hits_total",
			Help: "Availability checks answered from cache",
		}),
	}
}

func (m *Metrics) ObserveTransition(event string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveTransitionFailure(event string) {
	if m == nil {
		return
	}
	m.TransitionFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveAvailabilityCheck(result string) {
	if m == nil {
		return
	}
	m.AvailabilityChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAvailabilityCacheHit() {
	if m == nil {
		return
	}
	m.AvailabilityCacheHits.Inc()
}
