// Package metrics exposes Prometheus collectors for the ledger engine.
//
// All methods are safe on a nil *Metrics, so components can be built without
// instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "settleup"

// Metrics holds the collectors registered by New.
type Metrics struct {
	settlementTransitions *prometheus.CounterVec
	balanceComputations   *prometheus.CounterVec
	recomputeDuration     prometheus.Histogram
	outstandingDebt       *prometheus.GaugeVec
	eventsPublished       *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		settlementTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_transitions_total",
			Help:      "Settlement state transitions by resulting status and outcome.",
		}, []string{"status", "outcome"}),
		balanceComputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_computations_total",
			Help:      "Balance runs by outcome.",
		}, []string{"outcome"}),
		recomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time spent recomputing a cached group summary.",
			Buckets:   prometheus.DefBuckets,
		}),
		outstandingDebt: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outstanding_debt",
			Help:      "Sum of negative balances in the current window of a group.",
		}, []string{"group_id"}),
		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Ledger events published by kind.",
		}, []string{"kind"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// SettlementTransition counts a propose, approve or reject attempt.
func (m *Metrics) SettlementTransition(status string, err error) {
	if m == nil {
		return
	}
	m.settlementTransitions.WithLabelValues(status, outcome(err)).Inc()
}

// BalanceComputed counts a balance run.
func (m *Metrics) BalanceComputed(err error) {
	if m == nil {
		return
	}
	m.balanceComputations.WithLabelValues(outcome(err)).Inc()
}

// ObserveRecompute records the time taken by one summary recompute.
func (m *Metrics) ObserveRecompute(d time.Duration) {
	if m == nil {
		return
	}
	m.recomputeDuration.Observe(d.Seconds())
}

// SetOutstandingDebt records a group's outstanding debt.
func (m *Metrics) SetOutstandingDebt(groupID string, debt float64) {
	if m == nil {
		return
	}
	m.outstandingDebt.WithLabelValues(groupID).Set(debt)
}

// EventPublished counts a published ledger event.
func (m *Metrics) EventPublished(kind string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(kind).Inc()
}
