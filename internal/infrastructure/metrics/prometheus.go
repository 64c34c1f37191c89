// Package metrics registers the engine's process-local Prometheus
// counters and histograms, in the same style as the reference service's
// metrics package. A push transport to a remote sink is an external
// collaborator and is not part of this package — only local registration
// and the /metrics scrape surface live here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_http_request_duration_seconds",
			Help:    "Duration of wire front-end requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_http_requests_total",
			Help: "Total number of wire front-end requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	BankingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_operations_total",
			Help: "Total number of banking operations by type and outcome",
		},
		[]string{"operation", "outcome"}, // operation: create_account, deposit, transfer, get_balance
	)

	TransferAmountHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_transfer_amount",
			Help:    "Distribution of transfer amounts in the smallest monetary unit",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
	)

	AccountBalanceHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_account_balance",
			Help:    "Distribution of account balances observed at read time",
			Buckets: []float64{0, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000},
		},
	)

	ProcessedTransactionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_processed_transactions",
			Help: "Size of the processed-id set as loaded at boot; not updated afterwards",
		},
	)

	AccountsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_accounts",
			Help: "Number of accounts held by the store as loaded at boot; not updated afterwards",
		},
	)
)

// RecordOperation increments the per-operation counter for a given
// outcome ("success", "error").
func RecordOperation(operation, outcome string) {
	BankingOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
