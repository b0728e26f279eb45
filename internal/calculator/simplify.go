package calculator

import (
	"math"
	"sort"

	"github.com/mmynk/settleup/internal/models"
)

type position struct {
	memberID string
	amount   float64 // magnitude still to settle
}

// SimplifyDebts reduces net balances to a list of direct transfers.
//
// Algorithm:
// - Partition into debtors (balance < 0) and creditors (balance > 0), dropping
// members within Epsilon of zero
// - Stable sort both sides descending by magnitude
// - Greedy: match the largest remaining debtor with the largest remaining
// creditor and settle min(debt, credit); transfers of Epsilon or less are
// not emitted
// - A side advances once its remainder drops to Epsilon or less
//
// Every debtor pays out its debt and every creditor receives its credit, up
// to Epsilon truncation. The greedy plan is not guaranteed to be globally
// minimal; it has at most len(debtors)+len(creditors)-1 transfers.
func SimplifyDebts(balances []MemberBalance) []models.Transfer {
	var debtors, creditors []position
	for _, b := range balances {
		if math.Abs(b.NetBalance) <= Epsilon {
			continue
		}
		if b.NetBalance < 0 {
			debtors = append(debtors, position{memberID: b.MemberID, amount: -b.NetBalance})
		} else {
			creditors = append(creditors, position{memberID: b.MemberID, amount: b.NetBalance})
		}
	}

	sort.SliceStable(debtors, func(a, b int) bool { return debtors[a].amount > debtors[b].amount })
	sort.SliceStable(creditors, func(a, b int) bool { return creditors[a].amount > creditors[b].amount })

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := math.Min(debtor.amount, creditor.amount)
		if amount > Epsilon {
			transfers = append(transfers, models.Transfer{
				From:   debtor.memberID,
				To:     creditor.memberID,
				Amount: amount,
			})
		}

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount <= Epsilon {
			i++
		}
		if creditor.amount <= Epsilon {
			j++
		}
	}

	return transfers
}

// TotalTransferred sums the amounts of a transfer plan.
func TotalTransferred(transfers []models.Transfer) float64 {
	var total float64
	for _, t := range transfers {
		total += t.Amount
	}
	return total
}

// TotalDebt sums the magnitudes of all negative balances.
func TotalDebt(balances []MemberBalance) float64 {
	var total float64
	for _, b := range balances {
		if b.NetBalance < 0 {
			total -= b.NetBalance
		}
	}
	return total
}
