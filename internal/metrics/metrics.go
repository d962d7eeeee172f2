package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the payload server.
type Metrics struct {
	RefreshTotal    *prometheus.CounterVec // labels: result=ok|error
	RefreshDuration prometheus.Histogram
	SnapshotBars    prometheus.Gauge
	SnapshotTrades  prometheus.Gauge
	SnapshotAge     prometheus.GaugeFunc
	TradesRecorded  prometheus.Counter

	RequestsTotal *prometheus.CounterVec // labels: route, code
	RateLimited   prometheus.Counter

	registry *prometheus.Registry
}

// New builds the collectors on a private registry. age reports the
// seconds since the last successful refresh; nil leaves it at zero.
func New(age func() float64) *Metrics {
	if age == nil {
		age = func() float64 { return 0 }
	}

	m := &Metrics{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taflagger_refresh_total",
			Help: "Snapshot refresh attempts by result",
		}, []string{"result"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taflagger_refresh_duration_seconds",
			Help:    "Time to load bars and run the analysis",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotBars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taflagger_snapshot_bars",
			Help: "Bars in the served snapshot",
		}),
		SnapshotTrades: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taflagger_snapshot_trades",
			Help: "Trades in the served snapshot",
		}),
		SnapshotAge: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "taflagger_snapshot_age_seconds",
			Help: "Seconds since the served snapshot was built",
		}, age),
		TradesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taflagger_trades_recorded_total",
			Help: "Trades newly written to the database",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taflagger_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taflagger_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RefreshTotal,
		m.RefreshDuration,
		m.SnapshotBars,
		m.SnapshotTrades,
		m.SnapshotAge,
		m.TradesRecorded,
		m.RequestsTotal,
		m.RateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

