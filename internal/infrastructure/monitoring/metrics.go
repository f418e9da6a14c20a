package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Terminal metrics
	TerminalsActive      prometheus.Gauge
	TerminalsCreated     prometheus.Counter
	TerminalCreateErrors *prometheus.CounterVec
	TerminalExits        *prometheus.CounterVec
	TerminalBytes        *prometheus.CounterVec
	UnknownTerminal      *prometheus.CounterVec
	NotificationsDropped prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
	WSSlowClients prometheus.Counter

	startTime time.Time
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Terminal metrics
		TerminalsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_terminals_active",
				Help: "Number of live terminal sessions",
			},
		),
		TerminalsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_terminals_created_total",
				Help: "Total number of terminal sessions spawned",
			},
		),
		TerminalCreateErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_terminal_create_errors_total",
				Help: "Failed terminal creations by error code",
			},
			[]string{"code"},
		),
		TerminalExits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_terminal_exits_total",
				Help: "Terminal process exits by cause",
			},
			[]string{"cause"},
		),
		TerminalBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_terminal_bytes_total",
				Help: "Bytes relayed between display surface and terminals",
			},
			[]string{"direction"},
		),
		UnknownTerminal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_terminal_unknown_session_total",
				Help: "Operations addressed to a terminal id that is not live",
			},
			[]string{"op"},
		),
		NotificationsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_terminal_notifications_dropped_total",
				Help: "Notifications dropped because no display surface was attached",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
		WSSlowClients: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_ws_slow_clients_total",
				Help: "WebSocket clients disconnected for not draining their queue",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "backend_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// The recorders below accept a nil receiver so components can run without
// metrics wired in tests.

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetTerminalsActive sets the number of live terminals
func (m *Metrics) SetTerminalsActive(count int64) {
	if m == nil {
		return
	}
	m.TerminalsActive.Set(float64(count))
}

// IncTerminalsCreated increments the created counter
func (m *Metrics) IncTerminalsCreated() {
	if m == nil {
		return
	}
	m.TerminalsCreated.Inc()
}

// RecordCreateError records a failed create by error code
func (m *Metrics) RecordCreateError(code string) {
	if m == nil {
		return
	}
	m.TerminalCreateErrors.WithLabelValues(code).Inc()
}

// RecordExit records a terminal exit. cause is "destroyed" or "exited".
func (m *Metrics) RecordExit(cause string) {
	if m == nil {
		return
	}
	m.TerminalExits.WithLabelValues(cause).Inc()
}

// AddBytes adds relayed bytes. direction is "in" (to the shell) or "out".
func (m *Metrics) AddBytes(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TerminalBytes.WithLabelValues(direction).Add(float64(n))
}

// RecordUnknownTerminal counts an operation on an id that is not live
func (m *Metrics) RecordUnknownTerminal(op string) {
	if m == nil {
		return
	}
	m.UnknownTerminal.WithLabelValues(op).Inc()
}

// IncNotificationsDropped counts a notification with no surface attached
func (m *Metrics) IncNotificationsDropped() {
	if m == nil {
		return
	}
	m.NotificationsDropped.Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// IncWSSlowClients counts a client dropped for a full send queue
func (m *Metrics) IncWSSlowClients() {
	if m == nil {
		return
	}
	m.WSSlowClients.Inc()
}
