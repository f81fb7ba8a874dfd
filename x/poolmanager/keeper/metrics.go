package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics holds all Prometheus metrics for the poolmanager module
type PoolMetrics struct {
	// Swap metrics
	SwapsTotal        *prometheus.CounterVec
	SwapVolume        *prometheus.CounterVec
	SwapFeesCollected *prometheus.CounterVec
	SwapLatency       prometheus.Histogram

	// Liquidity metrics
	LiquidityProvided  *prometheus.CounterVec
	LiquidityWithdrawn *prometheus.CounterVec

	// Pool metrics
	PoolsCreated prometheus.Counter
	Repegs       *prometheus.CounterVec

	// Router metrics
	SwapChains    *prometheus.CounterVec
	SwapChainHops prometheus.Histogram

	// Safety metrics
	SolverFailures *prometheus.CounterVec
	LockContention *prometheus.CounterVec
}

var (
	poolMetricsOnce sync.Once
	poolMetrics     *PoolMetrics
)

// NewPoolMetrics creates and registers poolmanager metrics (singleton pattern)
func NewPoolMetrics() *PoolMetrics {
	poolMetricsOnce.Do(func() {
		poolMetrics = &PoolMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"pool_id", "offer_asset", "ask_asset", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "swap_volume_total",
					Help:      "Total swap volume in raw offer units",
				},
				[]string{"pool_id", "asset"},
			),
			SwapFeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "swap_fees_collected_total",
					Help:      "Total swap fees collected in raw ask units",
				},
				[]string{"pool_id", "asset", "kind"},
			),
			SwapLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "swap_latency_seconds",
					Help:      "Swap execution latency in seconds",
					Buckets:   prometheus.DefBuckets,
				},
			),
			LiquidityProvided: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "liquidity_provided_total",
					Help:      "Total number of liquidity deposits",
				},
				[]string{"pool_id"},
			),
			LiquidityWithdrawn: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "liquidity_withdrawn_total",
					Help:      "Total number of liquidity withdrawals",
				},
				[]string{"pool_id"},
			),
			PoolsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "pools_created_total",
					Help:      "Total number of pools created",
				},
			),
			Repegs: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "repegs_total",
					Help:      "Total number of price scale adjustments",
				},
				[]string{"pool_id"},
			),
			SwapChains: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "swap_chains_total",
					Help:      "Swap chains by final status",
				},
				[]string{"status"},
			),
			SwapChainHops: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "swap_chain_hops",
					Help:      "Number of hops of settled swap chains",
					Buckets:   []float64{1, 2, 3, 4, 6, 10, 20, 50},
				},
			),
			SolverFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "solver_failures_total",
					Help:      "Invariant solver failures by operation",
				},
				[]string{"operation"},
			),
			LockContention: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "colada",
					Subsystem: "poolmanager",
					Name:      "lock_contention_total",
					Help:      "Operations rejected because the pool was locked",
				},
				[]string{"pool_key"},
			),
		}
	})
	return poolMetrics
}
