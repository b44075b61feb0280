// Package metrics holds the Prometheus collectors for scrape runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus collectors for the scrape pipeline.
type Metrics struct {
	Registry *prometheus.Registry

	Searches       *prometheus.CounterVec
	RowsCollected  prometheus.Counter
	ContactFetches *prometheus.CounterVec
	KeepAlivePings *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	RunsInFlight   prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
	ExportsWritten *prometheus.CounterVec
}

// New registers and returns collectors on a fresh registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qkb_searches_total",
			Help: "Registry searches, labeled by outcome (ok, empty, error)",
		}, []string{"outcome"}),
		RowsCollected: f.NewCounter(prometheus.CounterOpts{
			Name: "qkb_rows_collected_total",
			Help: "Rows written to exports after per-run deduplication",
		}),
		ContactFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qkb_contact_fetches_total",
			Help: "Contact fetch attempts, labeled by result (found, missing)",
		}, []string{"result"}),
		KeepAlivePings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qkb_keepalive_pings_total",
			Help: "Keep-alive pings, labeled by outcome (ok, error)",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qkb_run_duration_seconds",
			Help:    "Wall time of complete scrape runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		RunsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "qkb_runs_in_flight",
			Help: "Scrape runs currently executing",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qkb_http_requests_total",
			Help: "HTTP requests served, labeled by route and status code",
		}, []string{"route", "code"}),
		ExportsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qkb_exports_written_total",
			Help: "Export files written, labeled by format",
		}, []string{"format"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// The helpers below accept a nil receiver so callers without metrics need
// no guards.

func (m *Metrics) ObserveSearch(outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsCollected.Add(float64(n))
}

func (m *Metrics) ObserveContactFetch(found bool) {
	if m == nil {
		return
	}
	result := "missing"
	if found {
		result = "found"
	}
	m.ContactFetches.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePing(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.KeepAlivePings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.ExportsWritten.WithLabelValues(format).Inc()
}

// StartRun marks a run in flight and returns a function that records its
// duration and clears the in-flight mark.
func (m *Metrics) StartRun() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.RunsInFlight.Inc()
	return func() {
		m.RunsInFlight.Dec()
		m.RunDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveHTTP(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}
