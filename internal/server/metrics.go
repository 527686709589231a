package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	entriesAdded   prometheus.Counter
	entriesRemoved prometheus.Counter
	imports        *prometheus.CounterVec
	suggestions    *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestDur     *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		entriesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studylog_entries_added_total",
			Help: "Entries created through the form or API.",
		}),
		entriesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studylog_entries_removed_total",
			Help: "Entries deleted after confirmation.",
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studylog_imports_total",
			Help: "Import attempts by outcome (ok, rejected, error).",
		}, []string{"outcome"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studylog_suggestions_total",
			Help: "Suggestion requests by outcome (ok, none, busy).",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studylog_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studylog_http_request_duration_seconds",
			Help:    "HTTP request duration by method and route.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.entriesAdded, m.entriesRemoved, m.imports, m.suggestions, m.requests, m.requestDur,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		m.requestDur.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
