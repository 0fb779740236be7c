package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/resilience"
)

// Metrics bundles the Prometheus collectors for the HTTP API, the grid cache
// and the insight circuit breaker.
type Metrics struct {
	gatherer prometheus.Gatherer
	reg      prometheus.Registerer

	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec

	BreakerState   prometheus.Gauge
	StepsCompleted prometheus.Counter
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice against the same registry reuses the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "landscope_http_requests_total",
		Help: "Handled API requests, labeled by route pattern, method and status code.",
	}, []string{"route", "method", "code"}), "landscope_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "landscope_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"route", "method"}), "landscope_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	breaker, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "landscope_insight_breaker_state",
		Help: "Insight circuit breaker state (0 closed, 1 open, 2 half-open).",
	}), "landscope_insight_breaker_state")
	if err != nil {
		return nil, err
	}

	steps, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "landscope_remediation_steps_total",
		Help: "Remediation steps recorded through the API.",
	}), "landscope_remediation_steps_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:       gatherer,
		reg:            reg,
		Requests:       requests,
		Durations:      durations,
		BreakerState:   breaker,
		StepsCompleted: steps,
	}, nil
}

// ObserveCache exports live statistics of c as gauges.
func (m *Metrics) ObserveCache(c *grid.Cache) error {
	if m == nil || c == nil {
		return nil
	}
	if _, err := register(m.reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "landscope_grid_cache_entries",
		Help: "Grids currently held in the cache.",
	}, func() float64 { return float64(c.Stats().Entries) }), "landscope_grid_cache_entries"); err != nil {
		return err
	}
	if _, err := register(m.reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "landscope_grid_cache_hit_ratio",
		Help: "Fraction of grid lookups served from the cache.",
	}, func() float64 { return c.Stats().HitRate }), "landscope_grid_cache_hit_ratio"); err != nil {
		return err
	}
	return nil
}

// BreakerObserver returns a hook suitable for resilience.BreakerConfig.OnChange.
func (m *Metrics) BreakerObserver() func(from, to resilience.State) {
	return func(_, to resilience.State) {
		if m == nil || m.BreakerState == nil {
			return
		}
		m.BreakerState.Set(float64(to))
	}
}

// Middleware records request counts and durations keyed by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
		m.Durations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) stepCompleted() {
	if m == nil || m.StepsCompleted == nil {
		return
	}
	m.StepsCompleted.Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, eris.Errorf("server: collector %s already registered with incompatible type", name)
		}
		return c, eris.Wrapf(err, "server: register %s", name)
	}
	return c, nil
}
