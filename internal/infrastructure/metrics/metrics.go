package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionMutations *prometheus.CounterVec

	// Dashboard metrics
	SummaryDuration  prometheus.Histogram
	ExportsGenerated *prometheus.CounterVec
	LiveDashboards   prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TransactionMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_transaction_mutations_total",
				Help: "Total transaction writes by operation and status",
			},
			[]string{"operation", "status"},
		),

		SummaryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_summary_duration_seconds",
			Help:    "Time spent filtering and aggregating a snapshot",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		ExportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_exports_total",
				Help: "Total exports generated by format",
			},
			[]string{"format"},
		),
		LiveDashboards: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_live_subscriptions",
			Help: "Current number of open live dashboards",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fintrack_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"kind", "status"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

func (m *Metrics) TransactionMutation(operation, status string) {
	m.TransactionMutations.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) SummaryComputed(d time.Duration) {
	m.SummaryDuration.Observe(d.Seconds())
}

func (m *Metrics) ExportGenerated(format string) {
	m.ExportsGenerated.WithLabelValues(format).Inc()
}

func (m *Metrics) LiveSubscriptions(delta int) {
	m.LiveDashboards.Add(float64(delta))
}

func (m *Metrics) AuthAttempt(kind, status string) {
	m.AuthAttempts.WithLabelValues(kind, status).Inc()
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// InFlight adjusts the in-flight request gauge.
func (m *Metrics) InFlight(delta int) {
	m.HTTPInFlight.Add(float64(delta))
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}
