package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// Summary is a group's unsettled window at one point in time.
type Summary struct {
	GroupID    string
	Checkpoint time.Time
	// UnsettledCount is the number of expenses created after the checkpoint.
	UnsettledCount int
	// UnsettledTotal is the sum of their amounts, rounded to cents.
	UnsettledTotal float64
	Balances       []calculator.MemberBalance
	Transfers      []models.Transfer
	ComputedAt     time.Time
}

// Summary computes the group's checkpoint, unsettled totals, balances and
// plan from a single read of the ledger.
func (e *Engine) Summary(ctx context.Context, groupID string) (*Summary, error) {
	w, err := e.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, exp := range w.expenses {
		total = total.Add(decimal.NewFromFloat(exp.Amount))
	}

	return &Summary{
		GroupID:        groupID,
		Checkpoint:     w.checkpoint,
		UnsettledCount: len(w.expenses),
		UnsettledTotal: total.Round(2).InexactFloat64(),
		Balances:       w.balances,
		Transfers:      calculator.SimplifyDebts(w.balances),
		ComputedAt:     e.now(),
	}, nil
}
