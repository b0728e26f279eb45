package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/engine"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/recompute"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	bus, err := newBus(ctx, cfg)
	if err != nil {
		return err
	}
	defer bus.Close()
	slog.Info("Event bus ready", "backend", cfg.EventBus)

	m := metrics.New(prometheus.DefaultRegisterer)
	eng := engine.New(store, engine.WithMetrics(m))

	cache, err := recompute.NewCache(cfg.SummaryCacheSize)
	if err != nil {
		return err
	}
	worker := recompute.NewWorker(bus, eng, cache, m)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager, api.PublicProcedures),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(
		service.NewAuthService(auth.NewPasswordAuthenticator(store, 0), jwtManager, store),
		interceptors,
	))
	mux.Handle(api.NewLedgerServiceHandler(service.NewLedgerService(store, bus, m), interceptors))
	mux.Handle(api.NewSettlementServiceHandler(service.NewSettlementService(store, eng, worker, bus, m), interceptors))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	var handler http.Handler = corsMiddleware(mux)
	if cfg.RateLimit != "" {
		limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return err
		}
		handler = middleware.RateLimit(limiter, handler)
	}
	handler = middleware.RequestLogger(handler)

	// h2c serves HTTP/2 without TLS for Connect clients.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("Connect server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newBus(ctx context.Context, cfg *config.Config) (events.Bus, error) {
	if cfg.EventBus == config.EventBusRedis {
		bus, err := events.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return bus, nil
	}
	return events.NewLocalBus(), nil
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, X-RateLimit-Limit, X-RateLimit-Remaining")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
