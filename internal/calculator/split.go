package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/models"
)

// ShareInput is a caller-provided portion of an expense.
type ShareInput struct {
	MemberID string
	Amount   float64
}

// EqualShares splits amount evenly among members, rounded to cents.
// Rounding leftovers go one cent at a time to the first members so the
// shares add up to amount exactly.
func EqualShares(amount float64, members []string) ([]models.Share, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("must have at least one member: %w", apperrors.ErrValidation)
	}

	total := decimal.NewFromFloat(amount).Round(2)
	n := decimal.NewFromInt(int64(len(members)))
	base := total.Div(n).RoundDown(2)
	cent := decimal.New(1, -2)
	leftover := total.Sub(base.Mul(n))

	shares := make([]models.Share, len(members))
	for i, m := range members {
		portion := base
		if leftover.GreaterThanOrEqual(cent) {
			portion = portion.Add(cent)
			leftover = leftover.Sub(cent)
		}
		shares[i] = models.Share{MemberID: m, Amount: portion.InexactFloat64()}
	}
	return shares, nil
}

// ExactShares validates caller-provided shares.
// Each member may appear once and amounts must not be negative. The sum is not
// checked against the expense amount.
func ExactShares(inputs []ShareInput) ([]models.Share, error) {
	seen := make(map[string]bool, len(inputs))
	shares := make([]models.Share, 0, len(inputs))
	for _, in := range inputs {
		if in.MemberID == "" {
			return nil, fmt.Errorf("share is missing member_id: %w", apperrors.ErrValidation)
		}
		if in.Amount < 0 {
			return nil, fmt.Errorf("share for %s is negative: %w", in.MemberID, apperrors.ErrValidation)
		}
		if seen[in.MemberID] {
			return nil, fmt.Errorf("duplicate share for %s: %w", in.MemberID, apperrors.ErrValidation)
		}
		seen[in.MemberID] = true
		shares = append(shares, models.Share{MemberID: in.MemberID, Amount: in.Amount})
	}
	return shares, nil
}
