package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, vec.WithLabelValues(labels...).Write(&m))
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, vec *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	obs, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, obs.(prometheus.Metric).Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRegistered(t *testing.T) {
	RequestsTotal.WithLabelValues("GET /livez", "GET", "2xx")
	RequestDuration.WithLabelValues("GET /livez", "GET")
	RegistrationsTotal.WithLabelValues("student")
	LoginsTotal.WithLabelValues(LoginSuccess)
	TokensRevokedTotal.WithLabelValues(RevokeLogout)
	HousekeepingDeletedTotal.WithLabelValues("outstanding_tokens")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"kelas_http_requests_total",
		"kelas_http_request_duration_seconds",
		"kelas_registrations_total",
		"kelas_logins_total",
		"kelas_token_pairs_issued_total",
		"kelas_tokens_revoked_total",
		"kelas_housekeeping_deleted_total",
	} {
		require.True(t, found[name], "metric %s not registered", name)
	}
}

func TestMiddlewareUsesPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /login", Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})))

	before := counterValue(t, RequestsTotal, "POST /login", "POST", "4xx")
	samples := histogramCount(t, RequestDuration, "POST /login", "POST")

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))

	require.Equal(t, before+1, counterValue(t, RequestsTotal, "POST /login", "POST", "4xx"))
	require.Equal(t, samples+1, histogramCount(t, RequestDuration, "POST /login", "POST"))
}

func TestMiddlewareDefaultsToOK(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	before := counterValue(t, RequestsTotal, "unmatched", "GET", "2xx")
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, before+1, counterValue(t, RequestsTotal, "unmatched", "GET", "2xx"))
}
