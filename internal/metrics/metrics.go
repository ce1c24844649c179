package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Upstream fetch outcomes
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds all Prometheus metrics for the catalog
type Metrics struct {
	// Upstream character API
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamDurationSeconds prometheus.Histogram
	CacheLookupsTotal       *prometheus.CounterVec
	CacheEntries            prometheus.Gauge

	// Controllers
	StaleResponsesTotal prometheus.Counter
	SessionsActive      prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal            *prometheus.CounterVec

	// System metrics
	UptimeSeconds prometheus.Gauge
	Goroutines    prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		UpstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiverse_upstream_requests_total",
				Help: "Total number of requests sent to the character API",
			},
			[]string{"outcome"},
		),
		UpstreamDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "multiverse_upstream_request_duration_seconds",
				Help:    "Character API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiverse_cache_lookups_total",
				Help: "Response cache lookups by result",
			},
			[]string{"result"},
		),
		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "multiverse_cache_entries",
				Help: "Number of entries in the persistent response cache",
			},
		),
		StaleResponsesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "multiverse_stale_responses_total",
				Help: "Responses discarded because a newer navigation superseded them",
			},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "multiverse_sessions_active",
				Help: "Number of browser sessions holding a list controller",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiverse_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "multiverse_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiverse_http_errors_total",
				Help: "Total number of HTTP error responses",
			},
			[]string{"type"},
		),
		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "multiverse_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
		Goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "multiverse_goroutines",
				Help: "Number of active goroutines",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.UpstreamRequestsTotal,
		m.UpstreamDurationSeconds,
		m.CacheLookupsTotal,
		m.CacheEntries,
		m.StaleResponsesTotal,
		m.SessionsActive,
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.HTTPErrorsTotal,
		m.UptimeSeconds,
		m.Goroutines,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveUpstream records one character API request
func ObserveUpstream(outcome string, seconds float64) {
	m := Global()
	if m != nil {
		m.UpstreamRequestsTotal.WithLabelValues(outcome).Inc()
		m.UpstreamDurationSeconds.Observe(seconds)
	}
}

// IncCacheLookup records a cache hit or miss
func IncCacheLookup(hit bool) {
	m := Global()
	if m == nil {
		return
	}
	if hit {
		m.CacheLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		m.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}
}

// IncStaleResponses increments the discarded stale response counter
func IncStaleResponses() {
	m := Global()
	if m != nil {
		m.StaleResponsesTotal.Inc()
	}
}

// SetSessionsActive sets the active session gauge
func SetSessionsActive(n int) {
	m := Global()
	if m != nil {
		m.SessionsActive.Set(float64(n))
	}
}
