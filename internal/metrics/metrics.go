// Package metrics exposes Prometheus instrumentation for detection,
// validation and the HTTP API.
//
// Every Metrics value owns a private registry, so tests and multiple servers
// in one process never collide on registration.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/ui-inventory-mcp/internal/detection"
	"github.com/ironsheep/ui-inventory-mcp/internal/validation"
)

const namespace = "ui_inventory"

// Metrics holds all collectors.
type Metrics struct {
	registry *prometheus.Registry

	// DetectionsTotal counts detection passes by strategy and status (ok, error).
	DetectionsTotal *prometheus.CounterVec

	// DetectionDuration measures a whole detection pass.
	DetectionDuration *prometheus.HistogramVec

	// ComponentsTotal counts emitted components by type.
	ComponentsTotal *prometheus.CounterVec

	// TextDecisions counts how HasText was decided (oracle, heuristic).
	TextDecisions *prometheus.CounterVec

	// ValidationsTotal counts validation runs by test case.
	ValidationsTotal *prometheus.CounterVec

	// ValidationAccuracy is the latest accuracy per test case.
	ValidationAccuracy *prometheus.GaugeVec

	// BatchImages counts images processed by batch runs, by status.
	BatchImages *prometheus.CounterVec

	// HTTPRequests counts API requests by route, method and status code.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration measures API request latency by route.
	HTTPDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry, including the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DetectionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Detection passes by strategy and status",
		}, []string{"strategy", "status"}),
		DetectionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detection_duration_seconds",
			Help:      "Detection pass duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"strategy"}),
		ComponentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "components_total",
			Help:      "Detected components by type",
		}, []string{"type"}),
		TextDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "text_decisions_total",
			Help:      "Text presence decisions by source",
		}, []string{"source"}),
		ValidationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation runs by test case",
		}, []string{"test_case"}),
		ValidationAccuracy: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_accuracy_percent",
			Help:      "Latest validation accuracy by test case",
		}, []string{"test_case"}),
		BatchImages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_images_total",
			Help:      "Images processed by batch runs by status",
		}, []string{"status"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDetection records one detection pass. res may be nil when err is set.
func (m *Metrics) ObserveDetection(strategy detection.Strategy, elapsed time.Duration, res *detection.Result, err error) {
	s := string(strategy)
	m.DetectionDuration.WithLabelValues(s).Observe(elapsed.Seconds())
	if err != nil || res == nil {
		m.DetectionsTotal.WithLabelValues(s, "error").Inc()
		return
	}
	m.DetectionsTotal.WithLabelValues(s, "ok").Inc()
	for _, c := range res.Components {
		m.ComponentsTotal.WithLabelValues(string(c.Type)).Inc()
		if c.TextSource != "" {
			m.TextDecisions.WithLabelValues(string(c.TextSource)).Inc()
		}
	}
}

// ObserveValidation records one validation result.
func (m *Metrics) ObserveValidation(res validation.Result) {
	m.ValidationsTotal.WithLabelValues(res.TestCaseID).Inc()
	m.ValidationAccuracy.WithLabelValues(res.TestCaseID).Set(res.Accuracy)
}

// ObserveBatchImage counts one batch image.
func (m *Metrics) ObserveBatchImage(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.BatchImages.WithLabelValues(status).Inc()
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
