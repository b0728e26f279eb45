// Package events carries ledger mutation notifications from the handlers that
// commit them to the recompute worker.
//
// Events are published after the mutation has committed, never from inside a
// store transaction. A lost event only delays a cached summary; balances
// served directly by the engine always read the store.
package events

import (
	"context"
	"errors"
	"fmt"
)

// Kind names the mutation that produced an event.
type Kind string

const (
	ExpenseCreated     Kind = "expense_created"
	ExpenseUpdated     Kind = "expense_updated"
	ExpenseDeleted     Kind = "expense_deleted"
	MemberAdded        Kind = "member_added"
	SettlementProposed Kind = "settlement_proposed"
	SettlementApproved Kind = "settlement_approved"
	SettlementRejected Kind = "settlement_rejected"
)

// Event tells subscribers that a group's ledger changed.
type Event struct {
	GroupID string `json:"group_id"`
	Kind    Kind   `json:"kind"`
}

// Validate fails fast on events missing required fields.
func (e Event) Validate() error {
	if e.GroupID == "" {
		return fmt.Errorf("event %q is missing group_id", e.Kind)
	}
	if e.Kind == "" {
		return fmt.Errorf("event for group %s is missing kind", e.GroupID)
	}
	return nil
}

// ErrClosed is returned when publishing to or subscribing on a closed bus.
var ErrClosed = errors.New("event bus closed")

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber receives events. The returned channel is closed when ctx is
// done or the bus is closed.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Bus is both ends of an event channel.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}
