// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Resolution metrics
	SwapsResolved    *prometheus.CounterVec
	SwapsFailed      *prometheus.CounterVec
	SwapsDetected    *prometheus.CounterVec
	ResolutionLatency prometheus.Histogram
	SwapFeeLamports  prometheus.Histogram

	// Graph metrics
	GraphNodes      prometheus.Histogram
	GraphEdges      prometheus.Histogram
	PoolsMarked     prometheus.Counter

	// Ingestion metrics
	TransactionsProcessed prometheus.Counter
	TransactionsSkipped   *prometheus.CounterVec
	HighestSlotSeen       prometheus.Gauge

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_graph_lab"
	}

	return &Metrics{
		// Resolution metrics
		SwapsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "swaps_resolved_total",
			Help:      "Total number of swaps resolved by kind",
		}, []string{"kind"}),
		SwapsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "swaps_failed_total",
			Help:      "Total number of swaps dropped during resolution by reason",
		}, []string{"reason"}),
		SwapsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "swaps_detected_total",
			Help:      "Total number of swap instructions detected by program",
		}, []string{"program"}),
		ResolutionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolution_latency_seconds",
			Help:      "Per-transaction resolution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SwapFeeLamports: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "swap_fee_lamports",
			Help:      "Fee derived per resolved swap in base units",
			Buckets:   []float64{0, 10, 100, 1000, 10000, 100000, 1000000, 10000000},
		}),

		// Graph metrics
		GraphNodes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "nodes_per_transaction",
			Help:      "Number of graph nodes per processed transaction",
			Buckets:   []float64{2, 5, 10, 20, 50, 100, 200, 500},
		}),
		GraphEdges: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "edges_per_transaction",
			Help:      "Number of graph edges per processed transaction",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 200, 500},
		}),
		PoolsMarked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "pools_marked_total",
			Help:      "Total number of accounts flagged as liquidity pools",
		}),

		// Ingestion metrics
		TransactionsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_processed_total",
			Help:      "Total number of transactions processed",
		}),
		TransactionsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_skipped_total",
			Help:      "Total number of transactions skipped by reason",
		}, []string{"reason"}),
		HighestSlotSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successfully processed transaction",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSwapResolved increments the resolved swap counter.
func RecordSwapResolved(router bool) {
	kind := "plain"
	if router {
		kind = "router"
	}
	DefaultMetrics.SwapsResolved.WithLabelValues(kind).Inc()
}

// RecordSwapFailed increments the failed swap counter.
func RecordSwapFailed(reason string) {
	DefaultMetrics.SwapsFailed.WithLabelValues(reason).Inc()
}

// RecordSwapDetected increments the detected swap counter.
func RecordSwapDetected(program string) {
	DefaultMetrics.SwapsDetected.WithLabelValues(program).Inc()
}

// RecordGraphSize records the per-transaction graph dimensions.
func RecordGraphSize(nodes, edges int) {
	DefaultMetrics.GraphNodes.Observe(float64(nodes))
	DefaultMetrics.GraphEdges.Observe(float64(edges))
}

// UpdateHighestSlot updates the highest slot seen gauge.
func UpdateHighestSlot(slot int64) {
	DefaultMetrics.HighestSlotSeen.Set(float64(slot))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
