package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/resilience"
	"github.com/sells-group/landscope/internal/zone"
)

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	e := newTestEnv(t, nil)

	e.do(t, http.MethodGet, "/api/grid", "")
	e.do(t, http.MethodGet, "/api/grid?year=bad", "")
	e.do(t, http.MethodGet, "/api/cells/gz-grid-0-2026", "")
	e.do(t, http.MethodGet, "/api/cells/gz-grid-1-2026", "")
	e.do(t, http.MethodGet, "/nowhere", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Requests.WithLabelValues("/api/grid", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Requests.WithLabelValues("/api/grid", "GET", "400")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.Requests.WithLabelValues("/api/cells/{id}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestMetrics_StepsCounter(t *testing.T) {
	e := newTestEnv(t, nil)

	e.do(t, http.MethodPost, "/api/cells/gz-grid-0-2026/steps", `{"step_index":0,"total_steps":2}`)
	e.do(t, http.MethodPost, "/api/cells/gz-grid-0-2026/steps", `{"step_index":1,"total_steps":2}`)
	e.do(t, http.MethodPost, "/api/cells/gz-grid-0-2026/steps", `{"step_index":5,"total_steps":2}`)

	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.StepsCompleted))
}

func TestMetrics_Endpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	e.do(t, http.MethodGet, "/health", "")

	w := e.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "landscope_http_requests_total")
	assert.Contains(t, string(body), "landscope_grid_cache_entries")
	assert.Contains(t, string(body), "landscope_insight_breaker_state")
}

func TestMetrics_CacheGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	zones := zone.MustDefault()
	cache := grid.NewCache(grid.New(zones), 4, time.Hour)
	require.NoError(t, m.ObserveCache(cache))

	cache.Grid(2026, 0)
	cache.Grid(2026, 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		if len(f.GetMetric()) == 1 && f.GetMetric()[0].GetGauge() != nil {
			values[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, 1.0, values["landscope_grid_cache_entries"])
	assert.InDelta(t, 0.5, values["landscope_grid_cache_hit_ratio"], 1e-9)
}

func TestMetrics_BreakerObserver(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Threshold: 1,
		Cooldown:  time.Hour,
		OnChange:  m.BreakerObserver(),
	})
	b.Record(assert.AnError)
	assert.Equal(t, resilience.Open, b.State())
	assert.Equal(t, float64(resilience.Open), testutil.ToFloat64(m.BreakerState))

	b.Reset()
	assert.Equal(t, float64(resilience.Closed), testutil.ToFloat64(m.BreakerState))
}

func TestMetrics_ReRegisterReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)

	first.Requests.WithLabelValues("/health", "GET", "200").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.Requests.WithLabelValues("/health", "GET", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NoError(t, m.ObserveCache(nil))
	m.stepCompleted()
	m.BreakerObserver()(resilience.Closed, resilience.Open)
}
