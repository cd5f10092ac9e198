// Package metrics exposes Prometheus counters for the ledger and the
// recurring sweep. Counters register on the default registry; cmd/server
// serves them via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsPosted counts ledger posts by transaction type.
	TransactionsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_transactions_posted_total",
		Help: "Number of transactions posted to the ledger.",
	}, []string{"type"})

	// TransactionsReverted counts ledger reverts (updates and deletes).
	TransactionsReverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_transactions_reverted_total",
		Help: "Number of transaction effects reverted.",
	})

	// InsufficientFunds counts rejected expense posts.
	InsufficientFunds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_insufficient_funds_total",
		Help: "Number of expense posts rejected for insufficient balance.",
	})

	// SweepExecutions counts recurring schedules executed by the due sweep.
	SweepExecutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_sweep_executions_total",
		Help: "Number of recurring schedules executed by the due sweep.",
	})

	// SweepFailures counts per-schedule failures isolated by the sweep.
	SweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_sweep_failures_total",
		Help: "Number of recurring schedule executions that failed.",
	})
)
