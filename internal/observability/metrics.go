package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics exposes Prometheus collectors for HTTP traffic and analysis runs.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpErrors   *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	recordsProcessed prometheus.Counter
	schemaGaps       prometheus.Counter
	backlogSize      prometheus.Gauge
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "slaanalytics",
				Name:      "http_requests_total",
				Help:      "Total number of handled HTTP requests.",
			},
			[]string{"path", "method", "status"},
		),
		httpErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "slaanalytics",
				Name:      "http_errors_total",
				Help:      "Total number of HTTP requests answered with a domain error.",
			},
			[]string{"path", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "slaanalytics",
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request durations in seconds.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"path", "method"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "slaanalytics",
				Name:      "analysis_runs_total",
				Help:      "Total number of analysis runs by outcome.",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "slaanalytics",
				Name:      "analysis_run_duration_seconds",
				Help:      "Histogram of full analysis run durations in seconds.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		recordsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "slaanalytics",
				Name:      "records_processed_total",
				Help:      "Total number of ticket records normalized across runs.",
			},
		),
		schemaGaps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "slaanalytics",
				Name:      "schema_gaps_total",
				Help:      "Total number of expected columns synthesized because the source lacked them.",
			},
		),
		backlogSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "slaanalytics",
				Name:      "current_backlog",
				Help:      "Backlog size observed by the most recent analysis run.",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpErrors,
		m.httpDuration,
		m.runsTotal,
		m.runDuration,
		m.recordsProcessed,
		m.schemaGaps,
		m.backlogSize,
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordRun observes an analysis run outcome.
func (m *Metrics) RecordRun(outcome string, duration time.Duration, records int) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
	if records > 0 {
		m.recordsProcessed.Add(float64(records))
	}
}

// RecordSchemaGaps counts synthesized columns.
func (m *Metrics) RecordSchemaGaps(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.schemaGaps.Add(float64(count))
}

// SetBacklog publishes the latest backlog size.
func (m *Metrics) SetBacklog(size int) {
	if m == nil {
		return
	}
	m.backlogSize.Set(float64(size))
}

// Gather returns the current metric families for exposition.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	if m == nil {
		return nil, nil
	}
	return m.registry.Gather()
}
