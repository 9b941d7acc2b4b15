package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "depositstx",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "depositstx",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	ledgerRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "depositstx",
			Subsystem: "ledger",
			Name:      "rejections_total",
			Help:      "Ledger operations refused, by error kind.",
		},
		[]string{"kind"},
	)
	ledgerHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "depositstx",
		Subsystem: "ledger",
		Name:      "height",
		Help:      "Ledger height at the last reconciliation.",
	})
	poolTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "depositstx",
		Subsystem: "pool",
		Name:      "total_micro",
		Help:      "Total pool balance in micro-units at the last reconciliation.",
	})
	poolDepositors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "depositstx",
		Subsystem: "pool",
		Name:      "active_depositors",
		Help:      "Active depositors at the last reconciliation.",
	})
	reconcileConsistent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "depositstx",
		Subsystem: "audit",
		Name:      "consistent",
		Help:      "1 when the last reconciliation found no problems, 0 otherwise.",
	})
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, ledgerRejections,
			ledgerHeight, poolTotal, poolDepositors, reconcileConsistent)
	})
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

// RecordRejection counts a ledger operation refused with the given error kind.
func RecordRejection(kind string) {
	RegisterMetrics()
	ledgerRejections.WithLabelValues(kind).Inc()
}

// RecordReconciliation publishes the figures of one reconciliation pass.
// Gauges hold float64, so pool totals above 2^53 micro-units lose precision.
func RecordReconciliation(height, totalPool, depositors uint64, consistent bool) {
	RegisterMetrics()
	ledgerHeight.Set(float64(height))
	poolTotal.Set(float64(totalPool))
	poolDepositors.Set(float64(depositors))
	if consistent {
		reconcileConsistent.Set(1)
	} else {
		reconcileConsistent.Set(0)
	}
}
