package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftless-hq/driftless/pkg/template"
)

// Metrics provides Prometheus metrics for the template engine workload. It
// implements template.Observer, so an enabled Metrics can be attached to an
// engine with template.WithObserver. A disabled Metrics is a no-op.
type Metrics struct {
	config MetricsConfig

	// Render metrics
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec

	// Condition metrics
	conditionsTotal   *prometheus.CounterVec
	conditionDuration *prometheus.HistogramVec

	// Error metrics, labeled by engine error kind
	errorsByKind *prometheus.CounterVec

	// Compiled-template cache metrics
	cacheLookups *prometheus.CounterVec

	registry *prometheus.Registry
}

var _ template.Observer = (*Metrics)(nil)

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		rendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "template_renders_total",
				Help:      "Total number of template renders",
			},
			[]string{"status"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "template_render_duration_seconds",
				Help:      "Duration of template renders in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		conditionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "condition_evaluations_total",
				Help:      "Total number of condition evaluations",
			},
			[]string{"status"},
		),
		conditionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "condition_evaluation_duration_seconds",
				Help:      "Duration of condition evaluations in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		errorsByKind: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "template_errors_total",
				Help:      "Total number of engine errors by kind",
			},
			[]string{"kind"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "template_cache_lookups_total",
				Help:      "Total number of compiled-template cache lookups",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.rendersTotal,
		m.renderDuration,
		m.conditionsTotal,
		m.conditionDuration,
		m.errorsByKind,
		m.cacheLookups,
	)

	return m, nil
}

// RenderCompleted records a render outcome. Part of template.Observer.
func (m *Metrics) RenderCompleted(duration time.Duration, err error) {
	if m.rendersTotal == nil {
		return
	}
	status := statusOf(err)
	m.rendersTotal.WithLabelValues(status).Inc()
	m.renderDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.recordError(err)
}

// ConditionEvaluated records a condition outcome. Part of template.Observer.
func (m *Metrics) ConditionEvaluated(duration time.Duration, err error) {
	if m.conditionsTotal == nil {
		return
	}
	status := statusOf(err)
	m.conditionsTotal.WithLabelValues(status).Inc()
	m.conditionDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.recordError(err)
}

// CacheLookup records a compiled-template cache hit or miss. Part of
// template.Observer.
func (m *Metrics) CacheLookup(hit bool) {
	if m.cacheLookups == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) recordError(err error) {
	if err == nil || m.errorsByKind == nil {
		return
	}
	kind := template.KindOf(err)
	if kind == "" {
		kind = "other"
	}
	m.errorsByKind.WithLabelValues(string(kind)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
