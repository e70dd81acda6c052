package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the payment-orchestration outcomes an operator watches:
// reconciliation is invisible to end users, so these counters and the logs are
// its only observable surface.
type Metrics struct {
	EventsProcessed     prometheus.Counter
	ReversalsCompleted  prometheus.Counter
	ReconcileFailures   prometheus.Counter
	ReconcileSkips      prometheus.Counter
	TransfersCreated    prometheus.Counter
	DuplicateOperations prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fiesta_reconciler_events_processed_total",
			Help: "Transaction events seen by the reconciliation job.",
		}),
		ReversalsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fiesta_reconciler_reversals_total",
			Help: "Transfer reversals completed by the reconciliation job.",
		}),
		ReconcileFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fiesta_reconciler_failures_total",
			Help: "Per-transaction reconciliation failures.",
		}),
		ReconcileSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "fiesta_reconciler_skips_total",
			Help: "Events skipped because no ledger row tracks the transaction.",
		}),
		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fiesta_transfers_created_total",
			Help: "Provider payouts created.",
		}),
		DuplicateOperations: factory.NewCounter(prometheus.CounterOpts{
			Name: "fiesta_duplicate_operations_total",
			Help: "Idempotency-guard hits across payment operations.",
		}),
	}
}
