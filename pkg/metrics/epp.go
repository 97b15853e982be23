package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EPPMetrics observes command throughput and connection lifecycle on the
// EPP front end. Pass a nil EPPMetrics to disable collection.
type EPPMetrics interface {
	// RecordCommand records one dispatched command by verb, object kind and
	// the EPP result code it produced.
	RecordCommand(verb, object string, resultCode int, duration time.Duration)

	// SetActiveSessions updates the current session gauge, one session per
	// open EPP connection whether or not it has logged in.
	SetActiveSessions(count int)

	RecordConnectionAccepted()
	RecordConnectionClosed()
	RecordConnectionForceClosed()

	// RecordTransferAutoApproved records one transfer the sweeper approved
	// after the grace period elapsed.
	RecordTransferAutoApproved()
}

type eppMetrics struct {
	commands          *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec
	activeSessions    prometheus.Gauge
	connsAccepted     prometheus.Counter
	connsClosed       prometheus.Counter
	connsForceClosed  prometheus.Counter
	transfersApproved prometheus.Counter
}

// NewEPPMetrics returns a Prometheus-backed EPPMetrics, or nil if
// InitRegistry has not been called.
func NewEPPMetrics() EPPMetrics {
	if !IsEnabled() {
		return nil
	}
	reg := GetRegistry()
	return &eppMetrics{
		commands: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "eppd_commands_total",
			Help: "Total EPP commands dispatched, by verb, object kind and result code.",
		}, []string{"verb", "object", "result_code"}),
		commandDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eppd_command_duration_seconds",
			Help:    "Time spent handling one EPP command, by verb and object kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"verb", "object"}),
		activeSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "eppd_active_sessions",
			Help: "Number of currently registered EPP sessions.",
		}),
		connsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "eppd_connections_accepted_total",
			Help: "Total TCP connections accepted by the EPP listener.",
		}),
		connsClosed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "eppd_connections_closed_total",
			Help: "Total EPP connections closed normally.",
		}),
		connsForceClosed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "eppd_connections_force_closed_total",
			Help: "Total EPP connections force-closed after the shutdown timeout elapsed.",
		}),
		transfersApproved: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "eppd_transfers_auto_approved_total",
			Help: "Total pending domain transfers auto-approved by the sweeper.",
		}),
	}
}

func (m *eppMetrics) RecordCommand(verb, object string, resultCode int, duration time.Duration) {
	m.commands.WithLabelValues(verb, object, strconv.Itoa(resultCode)).Inc()
	m.commandDuration.WithLabelValues(verb, object).Observe(duration.Seconds())
}

func (m *eppMetrics) SetActiveSessions(count int)  { m.activeSessions.Set(float64(count)) }
func (m *eppMetrics) RecordConnectionAccepted()    { m.connsAccepted.Inc() }
func (m *eppMetrics) RecordConnectionClosed()      { m.connsClosed.Inc() }
func (m *eppMetrics) RecordConnectionForceClosed() { m.connsForceClosed.Inc() }
func (m *eppMetrics) RecordTransferAutoApproved()  { m.transfersApproved.Inc() }
