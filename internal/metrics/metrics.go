package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook result categories recorded in webhook_requests_total.
const (
	ResultCreated          = "created"
	ResultDuplicate        = "duplicate"
	ResultInvalidSignature = "invalid_signature"
	ResultValidationError  = "validation_error"
	ResultError            = "error"
)

// Metrics is the process-owned metric set, registered on a private
// registry and passed into handlers rather than accessed as globals.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	webhookRequestsTotal *prometheus.CounterVec
	requestLatency       prometheus.Histogram
}

// New creates a Metrics set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
		webhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_requests_total",
				Help: "Total webhook requests by result",
			},
			[]string{"result"},
		),
		requestLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "request_latency_ms",
				Help:    "Request latency in milliseconds",
				Buckets: []float64{10, 50, 100, 500, 1000, 5000},
			},
		),
	}
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(path, status string) {
	m.httpRequestsTotal.WithLabelValues(path, status).Inc()
}

// RecordWebhookResult records one webhook processing outcome.
func (m *Metrics) RecordWebhookResult(result string) {
	m.webhookRequestsTotal.WithLabelValues(result).Inc()
}

// RecordLatency records a request latency in milliseconds.
func (m *Metrics) RecordLatency(latencyMS float64) {
	m.requestLatency.Observe(latencyMS)
}

// Handler returns the Prometheus exposition handler for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
