package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for the authenticated member ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for the authenticated member's email.
	EmailKey contextKey = "email"
)

// GetUserID returns the authenticated member ID, or "" before authentication.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail returns the authenticated member's email.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// WithUser returns a context carrying the caller identity.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, EmailKey, email)
}

// RequireAuth validates the bearer token of every call except the public
// procedures and puts the caller identity on the context.
func RequireAuth(jwtManager *auth.JWTManager, public map[string]bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if public[req.Spec().Procedure] {
				return next(ctx, req)
			}

			header := req.Header().Get("Authorization")
			if header == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithUser(ctx, claims.UserID, claims.Email), req)
		}
	}
}
