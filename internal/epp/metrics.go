package epp

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registry protocol traffic.
type Metrics struct {
	CommandsTotal    *prometheus.CounterVec
	ConnectionErrors prometheus.Counter
	SessionLogins    prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_epp_commands_total",
			Help: "Total EPP commands sent, by verb and result code",
		}, []string{"verb", "code"}),
		ConnectionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_epp_connection_errors_total",
			Help: "Total registry connection failures (dial, TLS, login, timeout)",
		}),
		SessionLogins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_epp_session_logins_total",
			Help: "Total successful registry session logins",
		}),
	}
}

func (m *Metrics) observeCommand(verb string, code int) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(verb, strconv.Itoa(code)).Inc()
}

func (m *Metrics) observeConnectionError() {
	if m == nil {
		return
	}
	m.ConnectionErrors.Inc()
}

func (m *Metrics) observeLogin() {
	if m == nil {
		return
	}
	m.SessionLogins.Inc()
}
