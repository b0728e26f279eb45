package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SettlementTransition("approved", nil)
	m.SettlementTransition("approved", nil)
	m.SettlementTransition("approved", errors.New("boom"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.settlementTransitions.WithLabelValues("approved", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlementTransitions.WithLabelValues("approved", "error")))

	m.BalanceComputed(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.balanceComputations.WithLabelValues("ok")))

	m.SetOutstandingDebt("g1", 42.5)
	m.SetOutstandingDebt("g1", 10)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.outstandingDebt.WithLabelValues("g1")))

	m.EventPublished("expense_created")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("expense_created")))

	m.ObserveRecompute(5 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.recomputeDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SettlementTransition("rejected", nil)
		m.BalanceComputed(nil)
		m.ObserveRecompute(time.Second)
		m.SetOutstandingDebt("g1", 1)
		m.EventPublished("member_added")
	})
}
