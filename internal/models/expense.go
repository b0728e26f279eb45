package models

import "time"

// Expense represents an amount paid by one member on behalf of the group.
// It stores the complete expense including every member's share.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid. Only the payer may edit or delete the expense.
	PayerID string

	// Description is a free-form label (e.g., "Groceries").
	Description string

	// Amount is the total paid. Always positive.
	Amount float64

	// Shares are the per-member portions of this expense.
	// Their sum is not required to match Amount; each share_amount is authoritative.
	Shares []Share

	// CreatedAt is when the expense was recorded. Balances only consider
	// expenses created strictly after the group's checkpoint.
	CreatedAt time.Time
}

// Share represents one member's portion of an expense.
type Share struct {
	// ExpenseID is the expense this share belongs to.
	ExpenseID string

	// MemberID is the member who owes this portion.
	MemberID string

	// Amount is the portion owed. Never negative.
	Amount float64

	// Paid is set by settlement approval and never reverts.
	Paid bool
}
