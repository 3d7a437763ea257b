package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ToxPredict/internal/testutil"
	"github.com/turtacn/ToxPredict/pkg/errors"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestNewMetricsCollector_NilLogger(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	c.RegisterCounter("x_total", "x").WithLabelValues().Inc()
	assert.Contains(t, scrapeMetrics(t, c), "test_x_total 1")
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableProcessMetrics: true}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "process_cpu_seconds_total")
}

func TestNewMetricsCollector_WithGoMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableGoMetrics: true}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "go_goroutines")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("predictions", "predictions", "ad_status").WithLabelValues("Warning").Add(3)
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_predictions{ad_status="Warning"} 3`)
}

func TestRegisterCounter_DuplicateSharesVector(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dup_total", "help").WithLabelValues().Inc()
	c.RegisterCounter("dup_total", "help").WithLabelValues().Inc()
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_dup_total 2")
}

func TestRegisterGauge_Success(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("corpus_size", "size")
	g.WithLabelValues().Set(10)
	g.WithLabelValues().Dec()
	g.With(map[string]string{}).Sub(2)
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_corpus_size 7")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterHistogram("latency", "Latency", nil).WithLabelValues().Observe(0.0007)
	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_latency_bucket{le="0.0005"} 0`)
	assert.Contains(t, out, `test_unit_latency_bucket{le="0.001"} 1`)
}

func TestRegisterSummary_DefaultObjectives(t *testing.T) {
	c := newTestCollector(t)
	s := c.RegisterSummary("value", "value", nil)
	for _, v := range []float64{1, 2, 3} {
		s.WithLabelValues().Observe(v)
	}
	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_value{quantile="0.5"} 2`)
	assert.Contains(t, out, "test_unit_value_count 3")
}

func TestRegister_TypeConflictReturnsNoop(t *testing.T) {
	log := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, log)
	require.NoError(t, err)

	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()
	c.RegisterGauge("conflict", "help").WithLabelValues().Set(10)

	assert.Contains(t, scrapeMetrics(t, c), "# TYPE test_unit_conflict counter")
	assert.True(t, log.HasMessage("warn", "Metric type mismatch"))
}

func TestRegister_RegistryErrorLogged(t *testing.T) {
	log := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, log)
	require.NoError(t, err)
	c.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Namespace: "test", Name: "taken"}))

	h := c.RegisterHistogram("taken", "help", nil)
	h.WithLabelValues().Observe(1)
	assert.True(t, log.HasMessage("error", "Failed to register metric"))
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := newTestCollector(t)
	timer := NewTimer(c.RegisterHistogram("timer_test", "Timer test", nil).WithLabelValues())
	time.Sleep(2 * time.Millisecond)
	d := timer.ObserveDuration()
	assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_timer_test_count 1")

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_total", "help", "id").WithLabelValues("1").Inc()
		}()
	}
	wg.Wait()
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_concurrent_total{id="1"} 50`)
}

func TestUnregister(t *testing.T) {
	c := newTestCollector(t)
	pc := prometheus.NewCounter(prometheus.CounterOpts{Name: "to_unregister"})
	c.MustRegister(pc)
	assert.True(t, c.Unregister(pc))
	assert.NotContains(t, scrapeMetrics(t, c), "to_unregister")
}

func TestNoopCollector(t *testing.T) {
	c := NewNoopCollector()
	assert.NotPanics(t, func() {
		c.RegisterCounter("a", "a").WithLabelValues().Inc()
		c.RegisterGauge("b", "b").With(nil).Set(1)
		c.RegisterHistogram("c", "c", nil).WithLabelValues().Observe(1)
		c.RegisterSummary("d", "d", nil).WithLabelValues().Observe(1)
		c.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "x"}))
	})
	assert.False(t, c.Unregister(nil))

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

//Personal.AI order the ending
