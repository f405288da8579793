// Package metrics holds the Prometheus registry and the collectors the
// storefront reports: backend calls and conversation polling.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var (
	BackendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Name:      "backend_requests_total",
		Help:      "Backend REST calls by resource, method and status code (0 = transport failure).",
	}, []string{"resource", "method", "code"})

	BackendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bazaar",
		Name:      "backend_request_seconds",
		Help:      "Backend REST call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource", "method"})

	ThreadsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bazaar",
		Name:      "threads_open",
		Help:      "Conversation threads currently polling.",
	})

	ThreadFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Name:      "thread_fetches_total",
		Help:      "Conversation message fetches by trigger (open, tick, send) and result.",
	}, []string{"trigger", "result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		BackendRequests,
		BackendLatency,
		ThreadsOpen,
		ThreadFetches,
	)
}

// ObserveBackend records one backend call.
func ObserveBackend(resource, method string, code int, elapsed time.Duration) {
	BackendRequests.WithLabelValues(resource, method, strconv.Itoa(code)).Inc()
	BackendLatency.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}
