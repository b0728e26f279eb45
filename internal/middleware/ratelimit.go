package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimiter builds an in-memory limiter from a formatted rate such as
// "100-M" (100 requests per minute).
func NewRateLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit rejects requests from a client IP over its limit with 429.
func RateLimit(l *limiter.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.GetIPKey(r)

		ctx, err := l.Get(r.Context(), ip)
		if err != nil {
			slog.Error("Failed to get rate limit context", "ip", ip, "error", err)
			http.Error(w, "internal error during rate limit check", http.StatusInternalServerError)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			slog.Warn("Rate limit exceeded", "ip", ip, "limit", ctx.Limit)
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
