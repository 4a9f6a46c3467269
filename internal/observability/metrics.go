// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the pool service.
type Metrics struct {
	// Operation metrics
	OperationsTotal  *prometheus.CounterVec // by operation
	OperationErrors  *prometheus.CounterVec // by operation
	OperationLatency *prometheus.HistogramVec

	// Accounting gauges
	TotalDeposited prometheus.Gauge
	TotalRefunded  prometheus.Gauge
	Participants   prometheus.Gauge
	Paused         prometheus.Gauge

	// Notification metrics
	EventsEmitted *prometheus.CounterVec // by type
	WSSubscribers prometheus.Gauge
	JournalErrors prometheus.Counter

	// Ledger client metrics
	LedgerCallLatency *prometheus.HistogramVec
	TransferFailures  prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "launchpool"
	}

	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Total operations submitted, by operation name",
		}, []string{"operation"}),
		OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "operation_errors_total",
			Help:      "Total failed operations, by operation name",
		}, []string{"operation"}),
		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Operation latency including external transfers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		TotalDeposited: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "total_deposited",
			Help:      "Running sum of accepted deposits in base units",
		}),
		TotalRefunded: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "total_refunded",
			Help:      "Base units returned via claims and emergency exits",
		}),
		Participants: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "participants",
			Help:      "Number of stake records",
		}),
		Paused: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "paused",
			Help:      "1 while the circuit breaker is engaged",
		}),
		EventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_emitted_total",
			Help:      "Notifications emitted, by event type",
		}, []string{"type"}),
		WSSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "ws_subscribers",
			Help:      "Connected websocket subscribers",
		}),
		JournalErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "journal_errors_total",
			Help:      "Event journal append failures",
		}),
		LedgerCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "call_duration_seconds",
			Help:      "External token ledger call latency, by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		TransferFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transfer_failures_total",
			Help:      "External transfers that failed and aborted their operation",
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
