package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(reg), reg
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordValidation("babbage", "Address", true, time.Millisecond)
		m.RecordCompilation("babbage", nil)
		m.RecordValidatorCache("babbage", true)
		m.RecordGovernance("babbage", false, map[string]int{"title": 1})
		m.RecordSchemaLoad("embedded", "babbage", 10, nil, time.Millisecond)
		m.RecordSchemaCache("redis", false)
	})
}

func TestMetrics_RecordValidation(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordValidation("babbage", "ByteString", true, time.Millisecond)
	m.RecordValidation("babbage", "ByteString", false, time.Millisecond)
	m.RecordValidation("babbage", "ByteString", false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("babbage", "ByteString", "valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("babbage", "ByteString", "invalid")))
}

func TestMetrics_RecordCaches(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordValidatorCache("conway", true)
	m.RecordValidatorCache("conway", false)
	m.RecordValidatorCache("conway", false)
	m.RecordSchemaCache("s3", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidatorCacheHitsTotal.WithLabelValues("conway")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidatorCacheMissesTotal.WithLabelValues("conway")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchemaCacheHitsTotal.WithLabelValues("s3")))
}

func TestMetrics_RecordGovernance(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordGovernance("babbage", false, map[string]int{"allowed-fields": 2, "title": 1})
	m.RecordGovernance("babbage", true, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GovernanceRunsTotal.WithLabelValues("babbage", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GovernanceRunsTotal.WithLabelValues("babbage", "pass")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GovernanceViolationsTotal.WithLabelValues("babbage", "allowed-fields")))
}

func TestMetrics_RecordSchemaLoad(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordSchemaLoad("filesystem", "conway", 42, nil, time.Millisecond)
	m.RecordSchemaLoad("filesystem", "conway", 0, errors.New("boom"), time.Millisecond)

	assert.Equal(t, 42.0, testutil.ToFloat64(m.DefinitionsTotal.WithLabelValues("conway")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchemaLoadsTotal.WithLabelValues("filesystem", "conway", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchemaLoadsTotal.WithLabelValues("filesystem", "conway", "error")))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m, reg := newTestMetrics(t)

	handler := HTTPMetricsMiddleware(m, func(*http.Request) string { return "/api/v1/eras/{era}" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/eras/babbage", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/eras/{era}", "418")))

	srv := httptest.NewServer(MetricsHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "cip116_http_requests_total"))
}

func TestHTTPMetricsMiddleware_NilMetrics(t *testing.T) {
	called := false
	handler := HTTPMetricsMiddleware(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
