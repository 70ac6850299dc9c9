package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TransitionsTotal   *prometheus.CounterVec
	TransitionFailures *prometheus.CounterVec
	Approvals          prometheus.Counter
	Restrictions       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_request_transitions_total",
			Help: "Total successful request workflow transitions, by event",
		}, []string{"event"}),
		TransitionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_request_transition_failures_total",
			Help: "Total failed request workflow transitions, by event",
		}, []string{"event"}),
		Approvals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_request_approvals_total",
			Help: "Total approved domain requests",
		}),
		Restrictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_request_account_restrictions_total",
			Help: "Accounts restricted via rejection with prejudice",
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

func (m *Metrics) ObserveApproval() {
	if m == nil {
		return
	}
	m.Approvals.Inc()
}

func (m *Metrics) ObserveRestriction() {
	if m == nil {
		return
	}
	m.Restrictions.Inc()
}
