package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func TestCreateGroup_CallerIsFirstMember(t *testing.T) {
	c := setupTestServer(t)
	alice := c.register(t, "alice")

	resp, err := c.ledger.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{Name: "Roommates"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if len(group.Members) != 1 || group.Members[0].ID != alice.id || group.Members[0].DisplayName != "alice" {
		t.Errorf("members: expected [alice], got %+v", group.Members)
	}
	if group.CreatedAt.IsZero() {
		t.Error("expected non-zero CreatedAt")
	}

	_, err = c.ledger.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{}))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestAddMember(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, bob, eve := c.register(t, "alice"), c.register(t, "bob"), c.register(t, "eve")

	groupID := c.newGroup(t, alice, bob)

	got, err := c.ledger.GetGroup(ctx, as(bob, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Msg.Group.Members) != 2 {
		t.Fatalf("members: expected 2, got %d", len(got.Msg.Group.Members))
	}
	if got.Msg.Group.Members[0].ID != alice.id || got.Msg.Group.Members[1].ID != bob.id {
		t.Errorf("roster order: got %+v", got.Msg.Group.Members)
	}

	_, err = c.ledger.GetGroup(ctx, as(eve, &api.GetGroupRequest{GroupID: groupID}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = c.ledger.AddMember(ctx, as(eve, &api.AddMemberRequest{GroupID: groupID, Email: eve.email}))
	wantCode(t, err, connect.CodePermissionDenied)

	_, err = c.ledger.AddMember(ctx, as(alice, &api.AddMemberRequest{GroupID: groupID, Email: "nobody@example.com"}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = c.ledger.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: "missing"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestCreateExpense_EqualSplitOverRoster(t *testing.T) {
	c := setupTestServer(t)
	alice, bob, carol := c.register(t, "alice"), c.register(t, "bob"), c.register(t, "carol")
	groupID := c.newGroup(t, alice, bob, carol)

	expense := c.pay(t, alice, groupID, 100)

	if expense.PayerID != alice.id {
		t.Errorf("payer: expected %s, got %s", alice.id, expense.PayerID)
	}
	if len(expense.Shares) != 3 {
		t.Fatalf("shares: expected 3, got %d", len(expense.Shares))
	}
	want := map[string]float64{alice.id: 33.34, bob.id: 33.33, carol.id: 33.33}
	for _, s := range expense.Shares {
		if s.ShareAmount != want[s.MemberID] {
			t.Errorf("share of %s: expected %v, got %v", s.MemberID, want[s.MemberID], s.ShareAmount)
		}
		if s.Paid {
			t.Errorf("share of %s should start unpaid", s.MemberID)
		}
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, bob, eve := c.register(t, "alice"), c.register(t, "bob"), c.register(t, "eve")
	groupID := c.newGroup(t, alice, bob)

	tests := []struct {
		name   string
		caller account
		req    *api.CreateExpenseRequest
		code   connect.Code
	}{
		{
			name:   "zero amount",
			caller: alice,
			req:    &api.CreateExpenseRequest{GroupID: groupID, Amount: 0},
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "negative share",
			caller: alice,
			req: &api.CreateExpenseRequest{GroupID: groupID, Amount: 10, Shares: []api.Share{
				{MemberID: bob.id, ShareAmount: -1},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "duplicate share",
			caller: alice,
			req: &api.CreateExpenseRequest{GroupID: groupID, Amount: 10, Shares: []api.Share{
				{MemberID: bob.id, ShareAmount: 5},
				{MemberID: bob.id, ShareAmount: 5},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "share for a non-member",
			caller: alice,
			req: &api.CreateExpenseRequest{GroupID: groupID, Amount: 10, Shares: []api.Share{
				{MemberID: eve.id, ShareAmount: 10},
			}},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "caller outside the group",
			caller: eve,
			req:    &api.CreateExpenseRequest{GroupID: groupID, Amount: 10},
			code:   connect.CodePermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ledger.CreateExpense(ctx, as(tt.caller, tt.req))
			wantCode(t, err, tt.code)
		})
	}
}

func TestUpdateAndDeleteExpense_PayerOnly(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, bob := c.register(t, "alice"), c.register(t, "bob")
	groupID := c.newGroup(t, alice, bob)

	expense := c.pay(t, alice, groupID, 100, api.Share{MemberID: bob.id, ShareAmount: 60})

	_, err := c.ledger.UpdateExpense(ctx, as(bob, &api.UpdateExpenseRequest{ExpenseID: expense.ID, Description: "mine now", Amount: 1}))
	wantCode(t, err, connect.CodePermissionDenied)

	updated, err := c.ledger.UpdateExpense(ctx, as(alice, &api.UpdateExpenseRequest{ExpenseID: expense.ID, Description: "Dinner", Amount: 120}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.Msg.Expense.Description != "Dinner" || updated.Msg.Expense.Amount != 120 {
		t.Errorf("expected updated description and amount, got %+v", updated.Msg.Expense)
	}
	if len(updated.Msg.Expense.Shares) != 1 || updated.Msg.Expense.Shares[0].ShareAmount != 60 {
		t.Errorf("shares should be unchanged, got %+v", updated.Msg.Expense.Shares)
	}

	_, err = c.ledger.DeleteExpense(ctx, as(bob, &api.DeleteExpenseRequest{ExpenseID: expense.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	if _, err := c.ledger.DeleteExpense(ctx, as(alice, &api.DeleteExpenseRequest{ExpenseID: expense.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	_, err = c.ledger.GetExpense(ctx, as(alice, &api.GetExpenseRequest{ExpenseID: expense.ID}))
	wantCode(t, err, connect.CodeNotFound)

	list, err := c.ledger.ListExpenses(ctx, as(bob, &api.ListExpensesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 0 {
		t.Errorf("expected no expenses, got %d", len(list.Msg.Expenses))
	}
}
