package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the dispatcher's collectors. Each App owns a registry so
// several apps (and tests) can live in one process.
type metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	queries        *prometheus.HistogramVec
	flushFailures  prometheus.Counter
	deniedRequests prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvc_requests_total",
				Help: "Dispatched requests by controller and response status",
			},
			[]string{"controller", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mvc_request_duration_seconds",
				Help:    "Time from dispatch to the end of teardown",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"controller"},
		),
		queries: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mvc_request_queries",
				Help:    "Statements executed per request",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"controller"},
		),
		flushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mvc_deferred_flush_failures_total",
			Help: "Requests whose deferred statements were rolled back",
		}),
		deniedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mvc_access_denied_total",
			Help: "Requests refused by an authentication guard",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.queries, m.flushFailures, m.deniedRequests)
	return m
}

func (m *metrics) observe(controller string, status int, elapsed time.Duration, queries int64) {
	if controller == "" {
		controller = "none"
	}
	m.requests.With(prometheus.Labels{
		"controller": controller,
		"status":     strconv.Itoa(status),
	}).Inc()
	m.duration.WithLabelValues(controller).Observe(elapsed.Seconds())
	m.queries.WithLabelValues(controller).Observe(float64(queries))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
