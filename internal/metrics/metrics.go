package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/queryward/queryward/internal/eventbus"
	events "github.com/queryward/queryward/internal/events"
)

// Metrics holds the registry and instruments for one process. Instruments
// are fed by eventbus subscribers, so producers stay free of any
// instrumentation concern.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	validations        *prometheus.CounterVec
	violations         *prometheus.CounterVec
	validationDuration prometheus.Histogram
	schemaReloads      *prometheus.CounterVec
}

// New creates a Metrics with its own private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queryward_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "queryward_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queryward_validations_total",
			Help: "Documents analyzed, by verdict.",
		}, []string{"verdict"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queryward_violations_total",
			Help: "Semantic violations reported, by rule.",
		}, []string{"rule"}),
		validationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queryward_validation_duration_seconds",
			Help:    "Time spent analyzing one document.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		schemaReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queryward_schema_reloads_total",
			Help: "Schema reload attempts, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.validations,
		m.violations,
		m.validationDuration,
		m.schemaReloads,
	)
	return m
}

// Register attaches the eventbus subscribers feeding the instruments.
// The returned function detaches them again.
func (m *Metrics) Register() (unsubscribe func()) {
	unsubHTTP := eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		m.httpRequests.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
		m.httpDuration.WithLabelValues(e.Request.Method).Observe(e.Duration.Seconds())
	})
	unsubValidation := eventbus.Subscribe(func(ctx context.Context, e events.ValidationFinish) {
		verdict := "valid"
		if !e.Valid {
			verdict = "invalid"
		}
		m.validations.WithLabelValues(verdict).Inc()
		m.validationDuration.Observe(e.Duration.Seconds())
		for _, rule := range e.Rules {
			m.violations.WithLabelValues(rule).Inc()
		}
	})
	unsubReload := eventbus.Subscribe(func(ctx context.Context, e events.SchemaReload) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		m.schemaReloads.WithLabelValues(outcome).Inc()
	})
	return func() {
		unsubHTTP()
		unsubValidation()
		unsubReload()
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
