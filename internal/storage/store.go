// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/settleup/internal/models"
)

// Ledger is the narrow contract the balance and settlement engine reads and
// writes through. Not-found, permission and state failures are reported with
// the kinds from package apperrors; anything else is a store failure.
type Ledger interface {
	// GetGroup retrieves a group and its roster.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListExpensesSince returns the group's expenses created strictly after
	// the given time, each with its shares, ordered by creation time.
	ListExpensesSince(ctx context.Context, groupID string, after time.Time) ([]*models.Expense, error)

	// LatestApprovedSettlement returns the settled_at of the most recent
	// approved settlement, or nil if there is none.
	LatestApprovedSettlement(ctx context.Context, groupID string) (*time.Time, error)

	// InsertPendingSettlements creates one pending settlement per transfer,
	// all or nothing.
	InsertPendingSettlements(ctx context.Context, groupID string, transfers []models.Transfer) ([]*models.Settlement, error)

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ApproveSettlementAtomic approves a pending settlement addressed to
	// callerID and marks every unpaid share of the debtor on expenses in the
	// current checkpoint window, up to and including settledAt, as paid, in a
	// single transaction.
	ApproveSettlementAtomic(ctx context.Context, settlementID, callerID string, settledAt time.Time) (*models.Settlement, error)

	// RejectSettlement rejects a pending settlement addressed to callerID.
	RejectSettlement(ctx context.Context, settlementID, callerID string) (*models.Settlement, error)

	// ListSettlementsByGroup retrieves all settlements for a group, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// ListPendingSettlementsFor retrieves pending settlements addressed to a
	// member across all groups, newest first.
	ListPendingSettlementsFor(ctx context.Context, memberID string) ([]*models.Settlement, error)
}

// Store defines the full storage surface: the Ledger plus the data-entry
// plumbing (accounts, groups, expenses) that feeds it.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	Ledger

	// CreateUser inserts a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a new group with its initial roster.
	// The group.ID and CreatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// AddGroupMember adds a user to a group roster. Adding an existing member is a no-op.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// CreateExpense persists an expense with its shares.
	// The expense.ID and CreatedAt fields are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense and its shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense changes the description and amount of an expense.
	UpdateExpense(ctx context.Context, expenseID, description string, amount float64) error

	// DeleteExpense removes an expense and its shares.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses retrieves all expenses for a group, newest first.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
