// Package metrics defines the Prometheus collectors used by rmcat.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rmcat"

// Collectors holds every rmcat collector. A nil *Collectors is valid and
// records nothing, so callers never need to guard.
type Collectors struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec

	repoResults  *prometheus.CounterVec
	repoFailures *prometheus.CounterVec
	refreshes    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),

		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Requests sent to the remote catalog API.",
			},
			[]string{"endpoint", "status"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Latency of remote catalog API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
			},
			[]string{"endpoint"},
		),

		repoResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repository",
				Name:      "results_total",
				Help:      "Successful repository reads by data source.",
			},
			[]string{"entity", "operation", "source"},
		),
		repoFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repository",
				Name:      "failures_total",
				Help:      "Failed repository reads by error code.",
			},
			[]string{"entity", "operation", "code"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repository",
				Name:      "background_refreshes_total",
				Help:      "Background cache refreshes by outcome.",
			},
			[]string{"entity", "outcome"},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
	}

	c.registry.MustRegister(
		c.apiRequests, c.apiDuration,
		c.repoResults, c.repoFailures, c.refreshes,
		c.httpRequests, c.httpDuration, c.httpInFlight,
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collectors) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collectors in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveAPIRequest records one remote request. status is 0 when no response
// was received.
func (c *Collectors) ObserveAPIRequest(endpoint string, status int, d time.Duration) {
	if c == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.apiRequests.WithLabelValues(endpoint, label).Inc()
	c.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordResult counts a successful repository read.
func (c *Collectors) RecordResult(entity, operation, source string) {
	if c == nil {
		return
	}
	c.repoResults.WithLabelValues(entity, operation, source).Inc()
}

// RecordFailure counts a failed repository read.
func (c *Collectors) RecordFailure(entity, operation, code string) {
	if c == nil {
		return
	}
	c.repoFailures.WithLabelValues(entity, operation, code).Inc()
}

// RecordRefresh counts a finished background refresh ("ok" or "error").
func (c *Collectors) RecordRefresh(entity, outcome string) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(entity, outcome).Inc()
}

// InstrumentHandler wraps next with request count, latency and in-flight
// tracking under the given route label.
func (c *Collectors) InstrumentHandler(route string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.httpInFlight.Inc()
		defer c.httpInFlight.Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		c.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		c.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
