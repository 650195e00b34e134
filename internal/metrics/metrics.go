// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Persistence paths used as the "path" label of PersistenceFailures.
const (
	PathRead  = "read"
	PathWrite = "write"
)

// ExpensesRecorded counts expenses committed to a ledger.
var ExpensesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "splitledger",
	Subsystem: "ledger",
	Name:      "expenses_recorded_total",
	Help:      "Total expenses recorded across all ledgers.",
})

// UsersRegistered counts members newly added to a ledger.
var UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "splitledger",
	Subsystem: "ledger",
	Name:      "users_registered_total",
	Help:      "Total members added across all ledgers.",
})

// PersistenceFailures counts snapshot load and save failures.
var PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "splitledger",
	Subsystem: "ledger",
	Name:      "persistence_failures_total",
	Help:      "Snapshot persistence failures by path (read, write).",
}, []string{"path"})

// RPCDuration tracks handler latency by procedure and result code.
var RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "splitledger",
	Subsystem: "rpc",
	Name:      "request_duration_seconds",
	Help:      "RPC handler latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"procedure", "code"})
