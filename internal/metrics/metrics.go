// Package metrics holds the dashboard's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. Methods are safe on a nil *Metrics.
type Metrics struct {
	// APIRequests counts backend API calls by method and status class.
	APIRequests *prometheus.CounterVec

	// APILatency records backend API call durations.
	APILatency *prometheus.HistogramVec

	// CSRFFetches counts CSRF token requests actually sent to the backend.
	CSRFFetches prometheus.Counter

	// ImportSessions counts finished import sessions by entity and outcome.
	ImportSessions *prometheus.CounterVec

	// ImportRows counts rows sent to the backend by entity.
	ImportRows *prometheus.CounterVec

	// ActiveUploads is the number of uploads in flight across all sessions.
	ActiveUploads prometheus.Gauge

	// HTTPRequests counts dashboard requests by route pattern and status class.
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Sessions is the number of live dashboard sessions.
	Sessions prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		APIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coverdesk_api_requests_total",
			Help: "Backend API requests by method and status class",
		}, []string{"method", "status"}),
		APILatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coverdesk_api_request_duration_seconds",
			Help:    "Latency of backend API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		CSRFFetches: f.NewCounter(prometheus.CounterOpts{
			Name: "coverdesk_csrf_fetches_total",
			Help: "CSRF token fetches sent to the backend",
		}),
		ImportSessions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coverdesk_import_sessions_total",
			Help: "Finished import sessions by entity and outcome",
		}, []string{"entity", "outcome"}),
		ImportRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coverdesk_import_rows_total",
			Help: "Rows accepted by the backend during imports",
		}, []string{"entity"}),
		ActiveUploads: f.NewGauge(prometheus.GaugeOpts{
			Name: "coverdesk_active_uploads",
			Help: "Uploads currently in flight",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coverdesk_http_requests_total",
			Help: "Dashboard HTTP requests by route, method and status class",
		}, []string{"route", "method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coverdesk_http_request_duration_seconds",
			Help:    "Latency of dashboard HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "coverdesk_sessions",
			Help: "Live dashboard sessions",
		}),
	}
}

// ObserveRequest records one backend call. status 0 means a transport error.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, statusClass(status)).Inc()
	m.APILatency.WithLabelValues(method).Observe(d.Seconds())
}

// CSRFFetched records a CSRF token request.
func (m *Metrics) CSRFFetched() {
	if m == nil {
		return
	}
	m.CSRFFetches.Inc()
}

// ImportFinished records the end of an import session.
func (m *Metrics) ImportFinished(entity, outcome string, uploaded int) {
	if m == nil {
		return
	}
	m.ImportSessions.WithLabelValues(entity, outcome).Inc()
	if uploaded > 0 {
		m.ImportRows.WithLabelValues(entity).Add(float64(uploaded))
	}
}

// UploadStarted and UploadDone track in-flight uploads.
func (m *Metrics) UploadStarted() {
	if m != nil {
		m.ActiveUploads.Inc()
	}
}

func (m *Metrics) UploadDone() {
	if m != nil {
		m.ActiveUploads.Dec()
	}
}

// ObserveHTTP records one dashboard request. route is the chi pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
}

// SetSessions reports the live session count.
func (m *Metrics) SetSessions(n int) {
	if m != nil {
		m.Sessions.Set(float64(n))
	}
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
