package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	m.RecordTokenIssued("api")
	m.RecordTokenIssued("api")
	m.RecordTokenIssued("cli")
	m.RecordLoginFailure("bad_password")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues("api")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued.WithLabelValues("cli")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginFailures.WithLabelValues("bad_password")))
}

func TestPrometheus_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	m.ObserveRequest("/auth/token", http.MethodPost, "201", 0.01)
	m.ObserveRequest("/auth/token", http.MethodPost, "401", 0.02)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/auth/token", http.MethodPost, "201")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMetrics(reg)
	assert.Error(t, err)
}

func TestPrometheus_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)
	require.NoError(t, RegisterRuntimeCollectors(reg))

	m.RecordTokenIssued("cli")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.True(t, strings.Contains(string(body), `auth_manager_tokens_issued_total{client="cli"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
