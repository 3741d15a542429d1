// Package metrics exposes Prometheus metrics on a private registry.
// Every method is safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects HTTP and ledger metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activities      *prometheus.CounterVec
	companyBookings *prometheus.CounterVec
	reports         *prometheus.CounterVec
	priceCache      *prometheus.CounterVec
}

// New initialises the registry and all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	activities := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_activities_total",
		Help: "Investment and withdrawal attempts by kind and outcome.",
	}, []string{"kind", "outcome"})
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_company_bookings_total",
		Help: "Company Account balance bookings by trigger and outcome.",
	}, []string{"trigger", "outcome"})
	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_reports_total",
		Help: "Reports generated by type and outcome.",
	}, []string{"type", "outcome"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_price_cache_requests_total",
		Help: "Share price cache lookups by result.",
	}, []string{"result"})

	registry.MustRegister(requests, duration, activities, bookings, reports, cache)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		activities:      activities,
		companyBookings: bookings,
		reports:         reports,
		priceCache:      cache,
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

// Middleware records request count and duration per route pattern.
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

// Activity counts a ledger mutation attempt.
func (m *Metrics) Activity(kind string, err error) {
	if m == nil {
		return
	}
	m.activities.WithLabelValues(kind, outcome(err)).Inc()
}

// CompanyBooking counts an attempt to invest the Company Account balance.
func (m *Metrics) CompanyBooking(trigger string, err error) {
	if m == nil {
		return
	}
	m.companyBookings.WithLabelValues(trigger, outcome(err)).Inc()
}

// Report counts a report build.
func (m *Metrics) Report(reportType string, err error) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(reportType, outcome(err)).Inc()
}

// PriceCache counts a cache lookup; hit reports whether it was served from cache.
func (m *Metrics) PriceCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.priceCache.WithLabelValues(result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
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
