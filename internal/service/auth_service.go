package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

var _ api.AuthServiceHandler = (*AuthService)(nil)

// AuthService implements account registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.Store
}

// NewAuthService creates an authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
	}
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, toConnectError("Register", err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, toConnectError("Register", err)
	}

	slog.Info("User registered", "user_id", user.ID)
	return connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token}), nil
}

// Login checks credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Warn("Login failed", "error", err)
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
		}
		return nil, toConnectError("Login", err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, toConnectError("Login", err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token}), nil
}

// GetCurrentUser returns the caller's account.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, caller)
	if err != nil {
		return nil, toConnectError("GetCurrentUser", err)
	}
	if user == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}
