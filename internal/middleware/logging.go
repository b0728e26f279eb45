package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor logs every RPC with its procedure, caller, duration and
// connect code. Client errors log at WARN, everything else at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"user_id", GetUserID(ctx),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err == nil {
				slog.Info("RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String())
			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				attrs = append(attrs, "error", connectErr.Message())
			} else {
				attrs = append(attrs, "error", err)
			}

			switch code {
			case connect.CodeInternal, connect.CodeUnknown, connect.CodeUnavailable, connect.CodeDataLoss:
				slog.Error("RPC error", attrs...)
			default:
				slog.Warn("RPC error", attrs...)
			}
			return resp, err
		}
	}
}

// RequestLogger logs every HTTP request reaching the server.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
