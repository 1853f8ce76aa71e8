// Package metrics exposes Prometheus counters for the HTTP surface, the
// editor, the uploader and the games.
package metrics

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

// Result labels.
const (
	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultBusy    = "busy"
	ResultFailure = "failure"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	ContentSubmissions *prometheus.CounterVec
	Uploads            *prometheus.CounterVec

	MatchingMoves       prometheus.Counter
	MatchingCompletions prometheus.Counter
	QuizCompletions     *prometheus.CounterVec

	Workspaces prometheus.Gauge
}

// NewCollector creates a collector with the given namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ContentSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_submissions_total",
			Help:      "Content editor submissions by result",
		}, []string{"result"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Asset uploads by category and result",
		}, []string{"category", "result"}),
		MatchingMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matching_moves_total",
			Help:      "Pairs revealed in the matching game",
		}),
		MatchingCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matching_completions_total",
			Help:      "Matching games completed",
		}),
		QuizCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_completions_total",
			Help:      "Quizzes completed by result tier",
		}, []string{"tier"}),
		Workspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspaces",
			Help:      "Client workspaces currently cached",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.ContentSubmissions,
		c.Uploads,
		c.MatchingMoves,
		c.MatchingCompletions,
		c.QuizCompletions,
		c.Workspaces,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
