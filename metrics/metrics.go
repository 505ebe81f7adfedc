package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the toolkit.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Transaction Pipeline Metrics
	transactionsPreparedTotal *prometheus.CounterVec
	transactionsSentTotal     *prometheus.CounterVec
	transactionSendDuration   *prometheus.HistogramVec
	computeBudgetInjections   *prometheus.CounterVec

	// Event Publishing Metrics
	eventsPublishedTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		transactionsPreparedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_prepared_total",
				Help: "Total number of transactions prepared by mode and status",
			},
			[]string{"mode", "status"},
		),
		transactionsSentTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_sent_total",
				Help: "Total number of transactions submitted by mode and status",
			},
			[]string{"mode", "status"},
		),
		transactionSendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transaction_send_duration_seconds",
				Help:    "Duration of transaction submission in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		computeBudgetInjections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compute_budget_instructions_injected_total",
				Help: "Total number of compute budget instructions injected by kind",
			},
			[]string{"kind"},
		),
		eventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "submission_events_published_total",
				Help: "Total number of submission events published by status",
			},
			[]string{"status"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, durationSeconds float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordTransactionPrepared records a prepare outcome.
func (m *Metrics) RecordTransactionPrepared(mode, status string) {
	m.transactionsPreparedTotal.WithLabelValues(mode, status).Inc()
}

// RecordTransactionSent records a submission outcome with its duration.
func (m *Metrics) RecordTransactionSent(mode, status string, durationSeconds float64) {
	m.transactionsSentTotal.WithLabelValues(mode, status).Inc()
	m.transactionSendDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordComputeBudgetInjection records an injected budget instruction
// ("limit" or "price").
func (m *Metrics) RecordComputeBudgetInjection(kind string) {
	m.computeBudgetInjections.WithLabelValues(kind).Inc()
}

// RecordEventPublished records a submission event publish attempt.
func (m *Metrics) RecordEventPublished(status string) {
	m.eventsPublishedTotal.WithLabelValues(status).Inc()
}
