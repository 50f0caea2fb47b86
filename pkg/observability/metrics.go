package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
// All Record* helpers are safe to call on a nil *Metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Validation metrics
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec

	// Compiled validator metrics
	ValidatorCompilationsTotal *prometheus.CounterVec
	ValidatorCacheHitsTotal    *prometheus.CounterVec
	ValidatorCacheMissesTotal  *prometheus.CounterVec

	// Governance metrics
	GovernanceRunsTotal       *prometheus.CounterVec
	GovernanceViolationsTotal *prometheus.CounterVec

	// Schema store metrics
	SchemaLoadsTotal       *prometheus.CounterVec
	SchemaLoadDuration     *prometheus.HistogramVec
	SchemaCacheHitsTotal   *prometheus.CounterVec
	SchemaCacheMissesTotal *prometheus.CounterVec
	DefinitionsTotal       *prometheus.GaugeVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cip116_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_validations_total",
				Help: "Total number of values validated",
			},
			[]string{"era", "type", "result"},
		),
		ValidationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cip116_validation_duration_seconds",
				Help:    "Validation duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"era", "type"},
		),

		ValidatorCompilationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_validator_compilations_total",
				Help: "Total number of schema compilations",
			},
			[]string{"era", "status"},
		),
		ValidatorCacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_validator_cache_hits_total",
				Help: "Compiled validator cache hits",
			},
			[]string{"era"},
		),
		ValidatorCacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_validator_cache_misses_total",
				Help: "Compiled validator cache misses",
			},
			[]string{"era"},
		),

		GovernanceRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_governance_runs_total",
				Help: "Total number of governance checks",
			},
			[]string{"era", "result"},
		),
		GovernanceViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_governance_violations_total",
				Help: "Governance violations found, by rule",
			},
			[]string{"era", "rule"},
		),

		SchemaLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_schema_loads_total",
				Help: "Schema document loads",
			},
			[]string{"source", "era", "status"},
		),
		SchemaLoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cip116_schema_load_duration_seconds",
				Help:    "Schema document fetch and parse duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		SchemaCacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_schema_cache_hits_total",
				Help: "Schema document cache hits",
			},
			[]string{"source"},
		),
		SchemaCacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cip116_schema_cache_misses_total",
				Help: "Schema document cache misses",
			},
			[]string{"source"},
		),
		DefinitionsTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cip116_definitions_total",
				Help: "Number of definitions per loaded era",
			},
			[]string{"era"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ValidationsTotal,
		m.ValidationDuration,
		m.ValidatorCompilationsTotal,
		m.ValidatorCacheHitsTotal,
		m.ValidatorCacheMissesTotal,
		m.GovernanceRunsTotal,
		m.GovernanceViolationsTotal,
		m.SchemaLoadsTotal,
		m.SchemaLoadDuration,
		m.SchemaCacheHitsTotal,
		m.SchemaCacheMissesTotal,
		m.DefinitionsTotal,
	)

	return m
}

// RecordValidation records one validation call
func (m *Metrics) RecordValidation(era, typeName string, valid bool, d time.Duration) {
	if m == nil {
		return
	}
	m.ValidationsTotal.WithLabelValues(era, typeName, resultLabel(valid)).Inc()
	m.ValidationDuration.WithLabelValues(era, typeName).Observe(d.Seconds())
}

// RecordCompilation records a schema compilation
func (m *Metrics) RecordCompilation(era string, err error) {
	if m == nil {
		return
	}
	m.ValidatorCompilationsTotal.WithLabelValues(era, statusLabel(err)).Inc()
}

// RecordValidatorCache records a compiled validator cache lookup
func (m *Metrics) RecordValidatorCache(era string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ValidatorCacheHitsTotal.WithLabelValues(era).Inc()
		return
	}
	m.ValidatorCacheMissesTotal.WithLabelValues(era).Inc()
}

// RecordGovernance records a governance run and its violations per rule
func (m *Metrics) RecordGovernance(era string, passed bool, violationsByRule map[string]int) {
	if m == nil {
		return
	}
	result := "fail"
	if passed {
		result = "pass"
	}
	m.GovernanceRunsTotal.WithLabelValues(era, result).Inc()
	for rule, n := range violationsByRule {
		m.GovernanceViolationsTotal.WithLabelValues(era, rule).Add(float64(n))
	}
}

// RecordSchemaLoad records fetching and parsing one era document
func (m *Metrics) RecordSchemaLoad(source, era string, definitions int, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.SchemaLoadsTotal.WithLabelValues(source, era, statusLabel(err)).Inc()
	m.SchemaLoadDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.DefinitionsTotal.WithLabelValues(era).Set(float64(definitions))
	}
}

// RecordSchemaCache records a schema document cache lookup
func (m *Metrics) RecordSchemaCache(source string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.SchemaCacheHitsTotal.WithLabelValues(source).Inc()
		return
	}
	m.SchemaCacheMissesTotal.WithLabelValues(source).Inc()
}

func resultLabel(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// pathLabel maps a request to a bounded label, typically its route template.
func HTTPMetricsMiddleware(metrics *Metrics, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	if pathLabel == nil {
		pathLabel = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := pathLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
