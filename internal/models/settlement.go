package models

import "time"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	SettlementPending  SettlementStatus = "pending"
	SettlementApproved SettlementStatus = "approved"
	SettlementRejected SettlementStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed.
func (s SettlementStatus) Terminal() bool {
	return s == SettlementApproved || s == SettlementRejected
}

// Valid reports whether s is a known status.
func (s SettlementStatus) Valid() bool {
	switch s {
	case SettlementPending, SettlementApproved, SettlementRejected:
		return true
	}
	return false
}

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromMemberID is the debtor who pays. Settlements are created by the debtor.
	FromMemberID string

	// ToMemberID is the creditor who receives. Only the creditor may approve or reject.
	ToMemberID string

	// Amount is the payment amount. Always positive.
	Amount float64

	// Status is pending until the creditor approves or rejects.
	Status SettlementStatus

	// CreatedAt is when the settlement was proposed.
	CreatedAt time.Time

	// SettledAt is set on approval and becomes the group's new checkpoint.
	SettledAt *time.Time
}

// Transfer is one step of a simplified debt plan.
type Transfer struct {
	From   string
	To     string
	Amount float64
}
