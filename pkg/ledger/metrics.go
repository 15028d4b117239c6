package ledger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the budget ledger.
type Metrics struct {
	// Reservation attempts by result (reserved, denied, unavailable, no_budget)
	reserveChecks *prometheus.CounterVec

	// Committed spend
	commits      prometheus.Counter
	commitedSats prometheus.Counter

	// Released reservations
	rollbacks prometheus.Counter

	// Stale reservations removed by the reaper
	reaped prometheus.Counter

	// Reserve latency
	reserveDuration prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// ledgerMetrics returns the process-wide ledger metrics, registering
// the collectors on first use.
func ledgerMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			reserveChecks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "glow_ledger_reserve_checks_total",
					Help: "Total number of budget reservation attempts",
				},
				[]string{"result"},
			),

			commits: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "glow_ledger_commits_total",
					Help: "Total number of committed reservations",
				},
			),

			commitedSats: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "glow_ledger_committed_sats_total",
					Help: "Total committed spend in satoshis",
				},
			),

			rollbacks: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "glow_ledger_rollbacks_total",
					Help: "Total number of rolled-back reservations",
				},
			),

			reaped: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "glow_ledger_reaped_reservations_total",
					Help: "Total number of stale reservations removed by the reaper",
				},
			),

			reserveDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "glow_ledger_reserve_duration_seconds",
					Help:    "Latency of budget reservation checks",
					Buckets: prometheus.DefBuckets,
				},
			),
		}
	})
	return metrics
}
