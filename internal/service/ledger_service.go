package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements groups, rosters and expenses.
type LedgerService struct {
	store    storage.Store
	notifier notifier
}

// NewLedgerService creates a LedgerService. bus may be nil.
func NewLedgerService(store storage.Store, bus events.Publisher, m *metrics.Metrics) *LedgerService {
	return &LedgerService{store: store, notifier: notifier{bus: bus, metrics: m}}
}

// CreateGroup creates a group with the caller as its first member.
func (s *LedgerService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:    req.Msg.Name,
		Members: []models.Member{{ID: caller}},
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	created, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", created.ID, "caller_id", caller)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(created)}), nil
}

// GetGroup returns a group the caller belongs to.
func (s *LedgerService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// AddMember adds a registered user, found by email, to the caller's group.
func (s *LedgerService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("AddMember", err)
	}

	user, err := s.store.GetUserByEmail(ctx, req.Msg.Email)
	if err != nil {
		return nil, toConnectError("AddMember", err)
	}
	if user == nil {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("no account for %s: %w", req.Msg.Email, apperrors.ErrNotFound))
	}

	if err := s.store.AddGroupMember(ctx, req.Msg.GroupID, user.ID); err != nil {
		return nil, toConnectError("AddMember", err)
	}
	s.notifier.publish(ctx, req.Msg.GroupID, events.MemberAdded)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("AddMember", err)
	}

	slog.Info("Member added", "group_id", group.ID, "member_id", user.ID, "caller_id", caller)
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

// CreateExpense records an expense paid by the caller. Without explicit
// shares the amount is split equally over the roster.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	shares, err := buildShares(group, req.Msg)
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     caller,
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Shares:      shares,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	s.notifier.publish(ctx, group.ID, events.ExpenseCreated)

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"payer_id", caller,
		"amount", expense.Amount,
		"shares_count", len(shares),
	)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

func buildShares(group *models.Group, req *api.CreateExpenseRequest) ([]models.Share, error) {
	if len(req.Shares) == 0 {
		return calculator.EqualShares(req.Amount, group.MemberIDs())
	}

	inputs := make([]calculator.ShareInput, len(req.Shares))
	for i, sh := range req.Shares {
		if !group.HasMember(sh.MemberID) {
			return nil, fmt.Errorf("%s is not a member of the group: %w", sh.MemberID, apperrors.ErrValidation)
		}
		inputs[i] = calculator.ShareInput{MemberID: sh.MemberID, Amount: sh.ShareAmount}
	}
	return calculator.ExactShares(inputs)
}

// GetExpense returns an expense in one of the caller's groups.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("GetExpense", err)
	}
	if _, err := memberGroup(ctx, s.store, expense.GroupID, caller); err != nil {
		return nil, toConnectError("GetExpense", err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// payerExpense loads an expense and checks that callerID paid it.
func (s *LedgerService) payerExpense(ctx context.Context, expenseID, callerID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.PayerID != callerID {
		return nil, fmt.Errorf("only the payer may change expense %s: %w", expenseID, apperrors.ErrPermissionDenied)
	}
	return expense, nil
}

// UpdateExpense changes the description and amount of the caller's expense.
// Shares are left as recorded.
func (s *LedgerService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.payerExpense(ctx, req.Msg.ExpenseID, caller)
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}
	if err := s.store.UpdateExpense(ctx, expense.ID, req.Msg.Description, req.Msg.Amount); err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}
	s.notifier.publish(ctx, expense.GroupID, events.ExpenseUpdated)

	updated, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(updated)}), nil
}

// DeleteExpense removes the caller's expense and its shares.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.payerExpense(ctx, req.Msg.ExpenseID, caller)
	if err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}
	s.notifier.publish(ctx, expense.GroupID, events.ExpenseDeleted)

	slog.Info("Expense deleted", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns every expense of a group, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("ListExpenses", err)
	}
	expenses, err := s.store.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}
