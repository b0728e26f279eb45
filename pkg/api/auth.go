package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	AuthServiceName = "settleup.v1.AuthService"

	AuthServiceRegisterProcedure       = "/settleup.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/settleup.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/settleup.v1.AuthService/GetCurrentUser"
)

// PublicProcedures may be called without a bearer token.
var PublicProcedures = map[string]bool{
	AuthServiceRegisterProcedure: true,
	AuthServiceLoginProcedure:    true,
}

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewAuthServiceHandler returns the service's path prefix and handler.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	handle(mux, AuthServiceLoginProcedure, svc.Login, opts)
	handle(mux, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts)
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient calls the auth service.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

// NewAuthServiceClient creates a client for the server at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:       newClient[RegisterRequest, RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:          newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		getCurrentUser: newClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
