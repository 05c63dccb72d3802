package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the call service
type Metrics struct {
	// HTTP Request Metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// WebSocket Metrics
	websocketConnections   prometheus.Gauge
	websocketMessagesTotal *prometheus.CounterVec
	websocketErrorsTotal   *prometheus.CounterVec

	// Call Metrics
	callsTotal        *prometheus.CounterVec
	callsActive       prometheus.Gauge
	callDuration      prometheus.Histogram
	relayedMessages   *prometheus.CounterVec
	protocolErrors    *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency in seconds",
				ConstLabels: labels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		httpRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name:        "http_requests_in_flight",
				Help:        "Number of HTTP requests currently being served",
				ConstLabels: labels,
			},
		),
		websocketConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name:        "websocket_connections",
				Help:        "Number of open websocket connections",
				ConstLabels: labels,
			},
		),
		websocketMessagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "websocket_messages_total",
				Help:        "Total number of websocket protocol events",
				ConstLabels: labels,
			},
			[]string{"direction", "event"},
		),
		websocketErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "websocket_errors_total",
				Help:        "Total number of websocket errors",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		callsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "calls_total",
				Help:        "Total number of call sessions by terminal outcome",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		callsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name:        "calls_active",
				Help:        "Number of calls currently ringing or connected",
				ConstLabels: labels,
			},
		),
		callDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "call_duration_seconds",
				Help:        "Connected call duration in seconds",
				ConstLabels: labels,
				Buckets:     []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600},
			},
		),
		relayedMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "call_messages_relayed_total",
				Help:        "Total number of in-call messages relayed",
				ConstLabels: labels,
			},
			[]string{"type"},
		),
		protocolErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "call_protocol_errors_total",
				Help:        "Total number of rejected protocol events by code",
				ConstLabels: labels,
			},
			[]string{"code"},
		),
		persistenceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "call_persistence_errors_total",
				Help:        "Total number of failed best-effort transcript writes",
				ConstLabels: labels,
			},
			[]string{"op"},
		),
	}
}

// RecordHTTPRequest records an HTTP request with its outcome
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// HTTPInFlight returns the in-flight request gauge
func (m *Metrics) HTTPInFlight() prometheus.Gauge {
	return m.httpRequestsInFlight
}

// ConnectionOpened increments the websocket connection gauge
func (m *Metrics) ConnectionOpened() {
	m.websocketConnections.Inc()
}

// ConnectionClosed decrements the websocket connection gauge
func (m *Metrics) ConnectionClosed() {
	m.websocketConnections.Dec()
}

// RecordEvent counts an inbound or outbound protocol event
func (m *Metrics) RecordEvent(direction, event string) {
	m.websocketMessagesTotal.WithLabelValues(direction, event).Inc()
}

// RecordWebsocketError counts a websocket failure
func (m *Metrics) RecordWebsocketError(kind string) {
	m.websocketErrorsTotal.WithLabelValues(kind).Inc()
}

// CallStarted increments the active call gauge
func (m *Metrics) CallStarted() {
	m.callsActive.Inc()
}

// CallFinished records a terminal outcome and the connected duration
func (m *Metrics) CallFinished(outcome string, duration time.Duration) {
	m.callsActive.Dec()
	m.callsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.callDuration.Observe(duration.Seconds())
	}
}

// RecordRelayedMessage counts one relayed in-call message
func (m *Metrics) RecordRelayedMessage(msgType string) {
	m.relayedMessages.WithLabelValues(msgType).Inc()
}

// RecordProtocolError counts one rejected protocol event
func (m *Metrics) RecordProtocolError(code string) {
	m.protocolErrors.WithLabelValues(code).Inc()
}

// RecordPersistenceError counts one failed transcript write
func (m *Metrics) RecordPersistenceError(op string) {
	m.persistenceErrors.WithLabelValues(op).Inc()
}
