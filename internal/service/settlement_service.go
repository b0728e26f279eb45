package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/engine"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// SummarySource serves group summaries, possibly from a cache kept fresh by
// ledger events. *recompute.Worker implements it.
type SummarySource interface {
	Summary(ctx context.Context, groupID string) (*engine.Summary, error)
}

// SettlementService implements balances, settlement plans and the settlement
// lifecycle.
type SettlementService struct {
	store     storage.Ledger
	engine    *engine.Engine
	summaries SummarySource
	notifier  notifier
}

// NewSettlementService creates a SettlementService. summaries defaults to the
// engine itself and bus may be nil.
func NewSettlementService(store storage.Ledger, eng *engine.Engine, summaries SummarySource, bus events.Publisher, m *metrics.Metrics) *SettlementService {
	if summaries == nil {
		summaries = eng
	}
	return &SettlementService{
		store:     store,
		engine:    eng,
		summaries: summaries,
		notifier:  notifier{bus: bus, metrics: m},
	}
}

// GetBalances computes the group's current balances.
func (s *SettlementService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("GetBalances", err)
	}

	balances, err := s.engine.Balances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}
	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// GetTransfers computes the simplified plan for the group's current balances.
func (s *SettlementService) GetTransfers(ctx context.Context, req *connect.Request[api.GetTransfersRequest]) (*connect.Response[api.GetTransfersResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("GetTransfers", err)
	}

	transfers, err := s.engine.Transfers(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetTransfers", err)
	}
	return connect.NewResponse(&api.GetTransfersResponse{Transfers: toAPITransfers(transfers)}), nil
}

// GetGroupSummary returns the group's summary, from cache when it is warm.
func (s *SettlementService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("GetGroupSummary", err)
	}

	summary, err := s.summaries.Summary(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroupSummary", err)
	}
	return connect.NewResponse(&api.GetGroupSummaryResponse{Summary: toAPISummary(summary)}), nil
}

// GetMemberPosition returns a member's balance and their part of the plan.
// The member defaults to the caller.
func (s *SettlementService) GetMemberPosition(ctx context.Context, req *connect.Request[api.GetMemberPositionRequest]) (*connect.Response[api.GetMemberPositionResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("GetMemberPosition", err)
	}

	memberID := req.Msg.MemberID
	if memberID == "" {
		memberID = caller
	}
	pos, err := s.engine.MemberPosition(ctx, req.Msg.GroupID, memberID)
	if err != nil {
		return nil, toConnectError("GetMemberPosition", err)
	}
	return connect.NewResponse(&api.GetMemberPositionResponse{Position: toAPIPosition(pos)}), nil
}

// ProposeSettlements records the caller's transfers as pending settlements.
func (s *SettlementService) ProposeSettlements(ctx context.Context, req *connect.Request[api.ProposeSettlementsRequest]) (*connect.Response[api.ProposeSettlementsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("ProposeSettlements", err)
	}

	settlements, err := s.engine.Propose(ctx, req.Msg.GroupID, caller, fromAPITransfers(req.Msg.Transfers))
	if err != nil {
		return nil, toConnectError("ProposeSettlements", err)
	}
	s.notifier.publish(ctx, req.Msg.GroupID, events.SettlementProposed)

	return connect.NewResponse(&api.ProposeSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ProposeAll proposes every transfer the caller owes in the current plan.
func (s *SettlementService) ProposeAll(ctx context.Context, req *connect.Request[api.ProposeAllRequest]) (*connect.Response[api.ProposeAllResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("ProposeAll", err)
	}

	settlements, err := s.engine.ProposeAll(ctx, req.Msg.GroupID, caller)
	if err != nil {
		return nil, toConnectError("ProposeAll", err)
	}
	s.notifier.publish(ctx, req.Msg.GroupID, events.SettlementProposed)

	return connect.NewResponse(&api.ProposeAllResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ApproveSettlement approves a pending settlement addressed to the caller.
func (s *SettlementService) ApproveSettlement(ctx context.Context, req *connect.Request[api.ApproveSettlementRequest]) (*connect.Response[api.ApproveSettlementResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	settlement, err := s.engine.Approve(ctx, req.Msg.SettlementID, caller)
	if err != nil {
		return nil, toConnectError("ApproveSettlement", err)
	}
	s.notifier.publish(ctx, settlement.GroupID, events.SettlementApproved)

	return connect.NewResponse(&api.ApproveSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// RejectSettlement rejects a pending settlement addressed to the caller.
func (s *SettlementService) RejectSettlement(ctx context.Context, req *connect.Request[api.RejectSettlementRequest]) (*connect.Response[api.RejectSettlementResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	settlement, err := s.engine.Reject(ctx, req.Msg.SettlementID, caller)
	if err != nil {
		return nil, toConnectError("RejectSettlement", err)
	}
	s.notifier.publish(ctx, settlement.GroupID, events.SettlementRejected)

	return connect.NewResponse(&api.RejectSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListPendingSettlements returns the settlements awaiting the caller's decision.
func (s *SettlementService) ListPendingSettlements(ctx context.Context, req *connect.Request[api.ListPendingSettlementsRequest]) (*connect.Response[api.ListPendingSettlementsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	settlements, err := s.engine.ListPending(ctx, caller)
	if err != nil {
		return nil, toConnectError("ListPendingSettlements", err)
	}
	slog.Debug("Listed pending settlements", "caller_id", caller, "count", len(settlements))
	return connect.NewResponse(&api.ListPendingSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ListSettlements returns the settlement history of a group.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
		return nil, toConnectError("ListSettlements", err)
	}

	settlements, err := s.engine.ListSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}
