package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/dibba-app/dibba-backend/api/middleware"
	"github.com/dibba-app/dibba-backend/api/routes"
	"github.com/dibba-app/dibba-backend/internal/auth"
	"github.com/dibba-app/dibba-backend/internal/cart"
	"github.com/dibba-app/dibba-backend/internal/collections"
	"github.com/dibba-app/dibba-backend/internal/delivery"
	"github.com/dibba-app/dibba-backend/internal/earnings"
	"github.com/dibba-app/dibba-backend/internal/meals"
	"github.com/dibba-app/dibba-backend/internal/orders"
	"github.com/dibba-app/dibba-backend/internal/reviews"
	"github.com/dibba-app/dibba-backend/internal/users"
	"github.com/dibba-app/dibba-backend/pkg/config"
	"github.com/dibba-app/dibba-backend/pkg/db"
	"github.com/dibba-app/dibba-backend/pkg/logger"
	"github.com/dibba-app/dibba-backend/pkg/metrics"
	"github.com/dibba-app/dibba-backend/pkg/redis"
	"github.com/dibba-app/dibba-backend/pkg/security"
)

const limiterSweepInterval = time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := db.Open(ctx, cfg.Store.Path, logg, metrics.NewStoreMetrics(registry))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	infra := routes.Infra{
		Store:       store,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Gatherer:    registry,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logg),
	}
	if cfg.Redis.Enabled() {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		infra.Redis = redisClient
	} else {
		logg.Info(ctx, "redis disabled; auth throttling and idempotency replay are off")
	}

	services, err := newServices(cfg, store)
	if err != nil {
		return err
	}

	if infra.RateLimiter != nil {
		go infra.RateLimiter.Run(ctx, limiterSweepInterval)
	}

	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"store_path": store.Path(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, infra, services),
		ReadHeaderTimeout: cfg.App.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(serverCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownGracePeriod)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newServices(cfg *config.Config, store *db.Store) (routes.Services, error) {
	authSvc, err := auth.NewService(auth.ServiceParams{
		Store:     store,
		Hasher:    security.NewHasher(cfg.Password),
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}
	usersSvc, err := users.NewService(store, nil)
	if err != nil {
		return routes.Services{}, err
	}
	mealsSvc, err := meals.NewService(store, nil)
	if err != nil {
		return routes.Services{}, err
	}
	cartSvc, err := cart.NewService(store, nil)
	if err != nil {
		return routes.Services{}, err
	}
	ordersSvc, err := orders.NewService(store, nil)
	if err != nil {
		return routes.Services{}, err
	}
	deliverySvc, err := delivery.NewService(store, ordersSvc)
	if err != nil {
		return routes.Services{}, err
	}
	earningsSvc, err := earnings.NewService(store, nil)
	if err != nil {
		return routes.Services{}, err
	}
	reviewsSvc, err := reviews.NewService(store, nil)
	if err != nil {
		return routes.Services{}, err
	}
	collectionsSvc, err := collections.NewService(store)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:        authSvc,
		Users:       usersSvc,
		Meals:       mealsSvc,
		Cart:        cartSvc,
		Orders:      ordersSvc,
		Delivery:    deliverySvc,
		Earnings:    earningsSvc,
		Reviews:     reviewsSvc,
		Collections: collectionsSvc,
	}, nil
}
