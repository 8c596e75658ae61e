package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
)

// MiddlewareName identifies the dispatch metrics middleware.
const MiddlewareName = "metrics"

// Metrics collects Prometheus metrics for the API.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	dispatchTotal   *prometheus.CounterVec
	loginsTotal     *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hrms_http_requests_total",
		Help: "HTTP requests by router pattern and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hrms_http_request_duration_seconds",
		Help:    "HTTP request duration per router pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hrms_api_dispatch_total",
		Help: "API requests by method, matched route pattern and envelope status.",
	}, []string{"method", "route", "code"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hrms_auth_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	registry.MustRegister(requests, duration, dispatched, logins,
		prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		dispatchTotal:   dispatched,
		loginsTotal:     logins,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Dispatch returns a dispatch middleware counting outcomes per matched route.
func (m *Metrics) Dispatch() dispatch.Middleware {
	return dispatch.MiddlewareFunc(MiddlewareName, func(c *dispatch.Context, next dispatch.Handler) (*httpx.Response, error) {
		resp, err := next(c)
		if m == nil {
			return resp, err
		}
		status := http.StatusNoContent
		switch {
		case err != nil:
			status = httpx.FromError(err).Status
		case resp != nil:
			status = resp.Status
		}
		pattern := "unmatched"
		if route := c.Route(); route != nil {
			pattern = route.Pattern
		}
		m.dispatchTotal.WithLabelValues(c.Method(), pattern, strconv.Itoa(status)).Inc()
		return resp, err
	})
}

// ObserveLogin counts a login attempt. outcome is "success", "invalid" or "inactive".
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(outcome).Inc()
}

// Registerer exposes the registry for custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
