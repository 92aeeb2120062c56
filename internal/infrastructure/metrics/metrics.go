package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus metrics. It implements
// usecase.Recorder.
type Metrics struct {
	// Ledger metrics
	LedgersBuilt     *prometheus.CounterVec
	LedgerDuration   prometheus.Histogram
	DocumentsSkipped prometheus.Counter

	// Reconciliation metrics
	ReconciliationsOpened    prometheus.Counter
	ReconciliationsFinalized prometheus.Counter
	DocumentsCleared         prometheus.Counter
}

// New creates the metrics and registers them with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates the metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgersBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subledger_ledgers_built_total",
				Help: "Total number of party ledgers served, by cache outcome",
			},
			[]string{"cache"},
		),
		LedgerDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "subledger_ledger_build_duration_seconds",
			Help:    "Time to aggregate and accumulate a party ledger",
			Buckets: prometheus.DefBuckets,
		}),
		DocumentsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "subledger_documents_skipped_total",
			Help: "Documents left out of a ledger because they had no usable date",
		}),

		ReconciliationsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "subledger_reconciliations_opened_total",
			Help: "Total number of reconciliation sessions opened",
		}),
		ReconciliationsFinalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "subledger_reconciliations_finalized_total",
			Help: "Total number of reconciliation sessions finalized",
		}),
		DocumentsCleared: factory.NewCounter(prometheus.CounterOpts{
			Name: "subledger_documents_cleared_total",
			Help: "Total number of documents marked cleared by reconciliation",
		}),
	}
}

// LedgerBuilt records one served ledger.
func (m *Metrics) LedgerBuilt(d time.Duration, cached bool) {
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	m.LedgersBuilt.WithLabelValues(outcome).Inc()
	m.LedgerDuration.Observe(d.Seconds())
}

// DocumentsSkipped records documents dropped during aggregation.
func (m *Metrics) DocumentsSkipped(n int) {
	m.DocumentsSkipped.Add(float64(n))
}

// ReconciliationOpened records a new session.
func (m *Metrics) ReconciliationOpened() {
	m.ReconciliationsOpened.Inc()
}

// ReconciliationFinalized records a finalized session.
func (m *Metrics) ReconciliationFinalized(cleared int) {
	m.ReconciliationsFinalized.Inc()
	m.DocumentsCleared.Add(float64(cleared))
}
