package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	SettlementServiceName = "settleup.v1.SettlementService"

	SettlementServiceGetBalancesProcedure            = "/settleup.v1.SettlementService/GetBalances"
	SettlementServiceGetTransfersProcedure           = "/settleup.v1.SettlementService/GetTransfers"
	SettlementServiceGetGroupSummaryProcedure        = "/settleup.v1.SettlementService/GetGroupSummary"
	SettlementServiceGetMemberPositionProcedure      = "/settleup.v1.SettlementService/GetMemberPosition"
	SettlementServiceProposeSettlementsProcedure     = "/settleup.v1.SettlementService/ProposeSettlements"
	SettlementServiceProposeAllProcedure             = "/settleup.v1.SettlementService/ProposeAll"
	SettlementServiceApproveSettlementProcedure      = "/settleup.v1.SettlementService/ApproveSettlement"
	SettlementServiceRejectSettlementProcedure       = "/settleup.v1.SettlementService/RejectSettlement"
	SettlementServiceListPendingSettlementsProcedure = "/settleup.v1.SettlementService/ListPendingSettlements"
	SettlementServiceListSettlementsProcedure        = "/settleup.v1.SettlementService/ListSettlements"
)

// SettlementServiceHandler is implemented by the balance and settlement service.
type SettlementServiceHandler interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetTransfers(context.Context, *connect.Request[GetTransfersRequest]) (*connect.Response[GetTransfersResponse], error)
	GetGroupSummary(context.Context, *connect.Request[GetGroupSummaryRequest]) (*connect.Response[GetGroupSummaryResponse], error)
	GetMemberPosition(context.Context, *connect.Request[GetMemberPositionRequest]) (*connect.Response[GetMemberPositionResponse], error)
	ProposeSettlements(context.Context, *connect.Request[ProposeSettlementsRequest]) (*connect.Response[ProposeSettlementsResponse], error)
	ProposeAll(context.Context, *connect.Request[ProposeAllRequest]) (*connect.Response[ProposeAllResponse], error)
	ApproveSettlement(context.Context, *connect.Request[ApproveSettlementRequest]) (*connect.Response[ApproveSettlementResponse], error)
	RejectSettlement(context.Context, *connect.Request[RejectSettlementRequest]) (*connect.Response[RejectSettlementResponse], error)
	ListPendingSettlements(context.Context, *connect.Request[ListPendingSettlementsRequest]) (*connect.Response[ListPendingSettlementsResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
}

// NewSettlementServiceHandler returns the service's path prefix and handler.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, SettlementServiceGetBalancesProcedure, svc.GetBalances, opts)
	handle(mux, SettlementServiceGetTransfersProcedure, svc.GetTransfers, opts)
	handle(mux, SettlementServiceGetGroupSummaryProcedure, svc.GetGroupSummary, opts)
	handle(mux, SettlementServiceGetMemberPositionProcedure, svc.GetMemberPosition, opts)
	handle(mux, SettlementServiceProposeSettlementsProcedure, svc.ProposeSettlements, opts)
	handle(mux, SettlementServiceProposeAllProcedure, svc.ProposeAll, opts)
	handle(mux, SettlementServiceApproveSettlementProcedure, svc.ApproveSettlement, opts)
	handle(mux, SettlementServiceRejectSettlementProcedure, svc.RejectSettlement, opts)
	handle(mux, SettlementServiceListPendingSettlementsProcedure, svc.ListPendingSettlements, opts)
	handle(mux, SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts)
	return "/" + SettlementServiceName + "/", mux
}

// SettlementServiceClient calls the settlement service.
type SettlementServiceClient struct {
	getBalances            *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getTransfers           *connect.Client[GetTransfersRequest, GetTransfersResponse]
	getGroupSummary        *connect.Client[GetGroupSummaryRequest, GetGroupSummaryResponse]
	getMemberPosition      *connect.Client[GetMemberPositionRequest, GetMemberPositionResponse]
	proposeSettlements     *connect.Client[ProposeSettlementsRequest, ProposeSettlementsResponse]
	proposeAll             *connect.Client[ProposeAllRequest, ProposeAllResponse]
	approveSettlement      *connect.Client[ApproveSettlementRequest, ApproveSettlementResponse]
	rejectSettlement       *connect.Client[RejectSettlementRequest, RejectSettlementResponse]
	listPendingSettlements *connect.Client[ListPendingSettlementsRequest, ListPendingSettlementsResponse]
	listSettlements        *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
}

// NewSettlementServiceClient creates a client for the server at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		getBalances:            newClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL, SettlementServiceGetBalancesProcedure, opts),
		getTransfers:           newClient[GetTransfersRequest, GetTransfersResponse](httpClient, baseURL, SettlementServiceGetTransfersProcedure, opts),
		getGroupSummary:        newClient[GetGroupSummaryRequest, GetGroupSummaryResponse](httpClient, baseURL, SettlementServiceGetGroupSummaryProcedure, opts),
		getMemberPosition:      newClient[GetMemberPositionRequest, GetMemberPositionResponse](httpClient, baseURL, SettlementServiceGetMemberPositionProcedure, opts),
		proposeSettlements:     newClient[ProposeSettlementsRequest, ProposeSettlementsResponse](httpClient, baseURL, SettlementServiceProposeSettlementsProcedure, opts),
		proposeAll:             newClient[ProposeAllRequest, ProposeAllResponse](httpClient, baseURL, SettlementServiceProposeAllProcedure, opts),
		approveSettlement:      newClient[ApproveSettlementRequest, ApproveSettlementResponse](httpClient, baseURL, SettlementServiceApproveSettlementProcedure, opts),
		rejectSettlement:       newClient[RejectSettlementRequest, RejectSettlementResponse](httpClient, baseURL, SettlementServiceRejectSettlementProcedure, opts),
		listPendingSettlements: newClient[ListPendingSettlementsRequest, ListPendingSettlementsResponse](httpClient, baseURL, SettlementServiceListPendingSettlementsProcedure, opts),
		listSettlements:        newClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL, SettlementServiceListSettlementsProcedure, opts),
	}
}

func (c *SettlementServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetTransfers(ctx context.Context, req *connect.Request[GetTransfersRequest]) (*connect.Response[GetTransfersResponse], error) {
	return c.getTransfers.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetGroupSummary(ctx context.Context, req *connect.Request[GetGroupSummaryRequest]) (*connect.Response[GetGroupSummaryResponse], error) {
	return c.getGroupSummary.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetMemberPosition(ctx context.Context, req *connect.Request[GetMemberPositionRequest]) (*connect.Response[GetMemberPositionResponse], error) {
	return c.getMemberPosition.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ProposeSettlements(ctx context.Context, req *connect.Request[ProposeSettlementsRequest]) (*connect.Response[ProposeSettlementsResponse], error) {
	return c.proposeSettlements.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ProposeAll(ctx context.Context, req *connect.Request[ProposeAllRequest]) (*connect.Response[ProposeAllResponse], error) {
	return c.proposeAll.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ApproveSettlement(ctx context.Context, req *connect.Request[ApproveSettlementRequest]) (*connect.Response[ApproveSettlementResponse], error) {
	return c.approveSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) RejectSettlement(ctx context.Context, req *connect.Request[RejectSettlementRequest]) (*connect.Response[RejectSettlementResponse], error) {
	return c.rejectSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListPendingSettlements(ctx context.Context, req *connect.Request[ListPendingSettlementsRequest]) (*connect.Response[ListPendingSettlementsResponse], error) {
	return c.listPendingSettlements.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}
