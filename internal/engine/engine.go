// Package engine computes group balances and settlement plans from the
// ledger and drives the settlement lifecycle.
//
// The engine has no side effects beyond its Ledger calls: it never publishes
// events or touches caches. Callers notify the recompute worker after a
// mutation returns.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// Epoch is the checkpoint of a group with no approved settlement.
var Epoch = time.Unix(0, 0).UTC()

// Engine computes balances and manages settlements for groups in a Ledger.
type Engine struct {
	store   storage.Ledger
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for settled_at.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMetrics records balance runs and settlement transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine reading and writing through store.
func New(store storage.Ledger, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Checkpoint returns the settled_at of the group's latest approved
// settlement, or Epoch if there is none. Expenses created at or before the
// checkpoint are settled.
func (e *Engine) Checkpoint(ctx context.Context, groupID string) (time.Time, error) {
	latest, err := e.store.LatestApprovedSettlement(ctx, groupID)
	if err != nil {
		return time.Time{}, apperrors.Store(err)
	}
	if latest == nil {
		return Epoch, nil
	}
	return *latest, nil
}

// window is one consistent read of a group's unsettled ledger.
type window struct {
	group      *models.Group
	checkpoint time.Time
	expenses   []*models.Expense
	balances   []calculator.MemberBalance
}

// load reads the group, its checkpoint (once) and the expenses after it, and
// computes balances. No partial result is returned on failure.
//
// The three reads are separate. An approval committing between the checkpoint
// read and the expense read only flips shares to paid, and paid shares are
// skipped, so the balances match the ledger after that approval while the
// reported checkpoint is the one before it.
func (e *Engine) load(ctx context.Context, groupID string) (w *window, err error) {
	defer func() { e.metrics.BalanceComputed(err) }()

	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	checkpoint, err := e.Checkpoint(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := e.store.ListExpensesSince(ctx, groupID, checkpoint)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	balances := calculator.CalculateBalances(expenses, group.DisplayNames())
	e.metrics.SetOutstandingDebt(groupID, calculator.TotalDebt(balances))

	slog.Debug("Computed balances",
		"group_id", groupID,
		"checkpoint", checkpoint,
		"expenses_count", len(expenses),
		"members_count", len(balances),
	)

	return &window{
		group:      group,
		checkpoint: checkpoint,
		expenses:   expenses,
		balances:   balances,
	}, nil
}

// Balances returns the net balance of every member with unsettled activity in
// the group, in order of first appearance.
func (e *Engine) Balances(ctx context.Context, groupID string) ([]calculator.MemberBalance, error) {
	w, err := e.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return w.balances, nil
}

// Transfers returns the simplified payment plan that clears the group's
// current balances.
func (e *Engine) Transfers(ctx context.Context, groupID string) ([]models.Transfer, error) {
	w, err := e.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SimplifyDebts(w.balances), nil
}

// Position is one member's view of a group's current window.
type Position struct {
	MemberID    string
	DisplayName string
	NetBalance  float64
	// Pays lists the transfers the member should send.
	Pays []models.Transfer
	// Receives lists the transfers the member should receive.
	Receives []models.Transfer
}

// MemberPosition returns memberID's balance and their part of the plan.
// A roster member with no unsettled activity has a zero position.
func (e *Engine) MemberPosition(ctx context.Context, groupID, memberID string) (*Position, error) {
	w, err := e.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !w.group.HasMember(memberID) {
		return nil, fmt.Errorf("member %s in group %s: %w", memberID, groupID, apperrors.ErrNotFound)
	}

	pos := &Position{MemberID: memberID, DisplayName: w.group.DisplayNames()[memberID]}
	if b, ok := calculator.BalanceMap(w.balances)[memberID]; ok {
		pos.NetBalance = b.NetBalance
	}
	for _, t := range calculator.SimplifyDebts(w.balances) {
		switch memberID {
		case t.From:
			pos.Pays = append(pos.Pays, t)
		case t.To:
			pos.Receives = append(pos.Receives, t)
		}
	}
	return pos, nil
}
