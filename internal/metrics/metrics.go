package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	RelayConnections prometheus.Gauge
	RelayEvents      *prometheus.CounterVec
	MailDispatch     *prometheus.CounterVec
	MediaDeletes     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RelayConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_connections",
			Help: "Open chat relay connections.",
		}),
		RelayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Chat relay events by name.",
		}, []string{"event"}),
		MailDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_dispatch_total",
			Help: "Outbound mail attempts by result.",
		}, []string{"result"}),
		MediaDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_delete_total",
			Help: "Media host deletions by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequests,
			m.HTTPDuration,
			m.RelayConnections,
			m.RelayEvents,
			m.MailDispatch,
			m.MediaDeletes,
		)
	}
	return m
}

// Result is the result label for an operation that returned err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
