package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cafestaff",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests broken down by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cafestaff",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	txAborts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cafestaff",
		Subsystem: "store",
		Name:      "tx_aborts_total",
		Help:      "Total number of aborted store transactions broken down by operation.",
	}, []string{"op"})

	assetCleanupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cafestaff",
		Subsystem: "assets",
		Name:      "cleanup_failures_total",
		Help:      "Total number of asset deletions that failed after the owning write committed.",
	}, []string{"op"})
)

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordTxAbort(op string) {
	txAborts.WithLabelValues(op).Inc()
}

func RecordAssetCleanupFailure(op string) {
	assetCleanupFailures.WithLabelValues(op).Inc()
}
