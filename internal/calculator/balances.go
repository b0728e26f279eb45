package calculator

import (
	"math"

	"github.com/mmynk/settleup/internal/models"
)

// Epsilon is the smallest amount treated as a real debt (one cent).
const Epsilon = 0.01

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID    string
	DisplayName string
	NetBalance  float64 // Positive = owed money, Negative = owes money
	TotalPaid   float64 // Unpaid shares of others on expenses this member paid
	TotalOwed   float64 // Unpaid shares this member owes to other payers
}

// CalculateBalances computes net balances over a window of expenses.
//
// Algorithm, per expense:
// - For each share with paid=false and member != payer: debit the member
// and credit the payer by share_amount
// - Paid shares and the payer's own share contribute nothing
// - An expense without shares is inert, whatever its amount
//
// The payer is credited only for what others still owe, never for the
// expense total. Members appear in order of first contribution; names are
// looked up in names and fall back to the member ID.
func CalculateBalances(expenses []*models.Expense, names map[string]string) []MemberBalance {
	index := make(map[string]int)
	var balances []MemberBalance

	get := func(memberID string) *MemberBalance {
		i, ok := index[memberID]
		if !ok {
			name := names[memberID]
			if name == "" {
				name = memberID
			}
			i = len(balances)
			index[memberID] = i
			balances = append(balances, MemberBalance{MemberID: memberID, DisplayName: name})
		}
		return &balances[i]
	}

	for _, expense := range expenses {
		for _, share := range expense.Shares {
			if share.Paid || share.MemberID == expense.PayerID {
				continue
			}
			// Payer registers before the share's member.
			get(expense.PayerID).TotalPaid += share.Amount
			get(share.MemberID).TotalOwed += share.Amount
		}
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalPaid - balances[i].TotalOwed
	}
	return balances
}

// BalanceMap indexes balances by member ID.
func BalanceMap(balances []MemberBalance) map[string]MemberBalance {
	m := make(map[string]MemberBalance, len(balances))
	for _, b := range balances {
		m[b.MemberID] = b
	}
	return m
}

// Sum returns the sum of all net balances. It is zero up to rounding.
func Sum(balances []MemberBalance) float64 {
	var total float64
	for _, b := range balances {
		total += b.NetBalance
	}
	return total
}

// Settled reports whether every balance is within Epsilon of zero.
func Settled(balances []MemberBalance) bool {
	for _, b := range balances {
		if math.Abs(b.NetBalance) > Epsilon {
			return false
		}
	}
	return true
}
