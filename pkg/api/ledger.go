package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	LedgerServiceName = "settleup.v1.LedgerService"

	LedgerServiceCreateGroupProcedure   = "/settleup.v1.LedgerService/CreateGroup"
	LedgerServiceGetGroupProcedure      = "/settleup.v1.LedgerService/GetGroup"
	LedgerServiceAddMemberProcedure     = "/settleup.v1.LedgerService/AddMember"
	LedgerServiceCreateExpenseProcedure = "/settleup.v1.LedgerService/CreateExpense"
	LedgerServiceGetExpenseProcedure    = "/settleup.v1.LedgerService/GetExpense"
	LedgerServiceUpdateExpenseProcedure = "/settleup.v1.LedgerService/UpdateExpense"
	LedgerServiceDeleteExpenseProcedure = "/settleup.v1.LedgerService/DeleteExpense"
	LedgerServiceListExpensesProcedure  = "/settleup.v1.LedgerService/ListExpenses"
)

// LedgerServiceHandler is implemented by the ledger data-entry service.
type LedgerServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
}

// NewLedgerServiceHandler returns the service's path prefix and handler.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, LedgerServiceCreateGroupProcedure, svc.CreateGroup, opts)
	handle(mux, LedgerServiceGetGroupProcedure, svc.GetGroup, opts)
	handle(mux, LedgerServiceAddMemberProcedure, svc.AddMember, opts)
	handle(mux, LedgerServiceCreateExpenseProcedure, svc.CreateExpense, opts)
	handle(mux, LedgerServiceGetExpenseProcedure, svc.GetExpense, opts)
	handle(mux, LedgerServiceUpdateExpenseProcedure, svc.UpdateExpense, opts)
	handle(mux, LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts)
	handle(mux, LedgerServiceListExpensesProcedure, svc.ListExpenses, opts)
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient calls the ledger service.
type LedgerServiceClient struct {
	createGroup   *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup      *connect.Client[GetGroupRequest, GetGroupResponse]
	addMember     *connect.Client[AddMemberRequest, AddMemberResponse]
	createExpense *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	getExpense    *connect.Client[GetExpenseRequest, GetExpenseResponse]
	updateExpense *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	listExpenses  *connect.Client[ListExpensesRequest, ListExpensesResponse]
}

// NewLedgerServiceClient creates a client for the server at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	return &LedgerServiceClient{
		createGroup:   newClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, LedgerServiceCreateGroupProcedure, opts),
		getGroup:      newClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL, LedgerServiceGetGroupProcedure, opts),
		addMember:     newClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL, LedgerServiceAddMemberProcedure, opts),
		createExpense: newClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL, LedgerServiceCreateExpenseProcedure, opts),
		getExpense:    newClient[GetExpenseRequest, GetExpenseResponse](httpClient, baseURL, LedgerServiceGetExpenseProcedure, opts),
		updateExpense: newClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL, LedgerServiceUpdateExpenseProcedure, opts),
		deleteExpense: newClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, LedgerServiceDeleteExpenseProcedure, opts),
		listExpenses:  newClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, LedgerServiceListExpensesProcedure, opts),
	}
}

func (c *LedgerServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}
