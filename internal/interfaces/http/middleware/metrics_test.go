package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/prometheus"
)

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "mw"}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	r := chi.NewRouter()
	r.Use(Metrics(metrics))
	r.Post("/api/v1/molecules/{op}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	for _, p := range []string{"/api/v1/molecules/a", "/api/v1/molecules/b", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, p, nil))
	}

	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := w.Body.String()
	assert.Contains(t, out, `mw_http_requests_total{method="POST",path="/api/v1/molecules/{op}",status_code="202"} 2`)
	assert.Contains(t, out, `mw_http_requests_total{method="POST",path="unmatched",status_code="404"} 1`)
	assert.Contains(t, out, `mw_http_active_requests 0`)
}

func TestMetrics_NilIsPassThrough(t *testing.T) {
	h := okHandler()
	w := httptest.NewRecorder()
	Metrics(nil)(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

//Personal.AI order the ending
