package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dibba-app/dibba-backend/api/controllers"
	"github.com/dibba-app/dibba-backend/api/middleware"
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
	"github.com/dibba-app/dibba-backend/pkg/enums"
	"github.com/dibba-app/dibba-backend/pkg/logger"
	"github.com/dibba-app/dibba-backend/pkg/metrics"
	pkgredis "github.com/dibba-app/dibba-backend/pkg/redis"
)

// Services are the domain services the route table dispatches to.
type Services struct {
	Auth        auth.Service
	Users       users.Service
	Meals       meals.Service
	Cart        cart.Service
	Orders      orders.Service
	Delivery    delivery.Service
	Earnings    earnings.Service
	Reviews     reviews.Service
	Collections collections.Service
}

// Infra carries the process-level dependencies. Redis, metrics and the rate
// limiter are optional and may be nil.
type Infra struct {
	Store       controllers.Pinger
	Redis       *pkgredis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.NotFound(controllers.NotFound(logg))
	r.MethodNotAllowed(controllers.MethodNotAllowed(logg))

	var (
		counters    pkgredis.CounterStore
		idempotency pkgredis.IdempotencyStore
		redisPinger controllers.Pinger
		observer    *metrics.HTTPMetrics
	)
	if infra.Redis != nil {
		counters = infra.Redis
		idempotency = infra.Redis
		redisPinger = infra.Redis
	}
	if cfg.Metrics.Enabled {
		observer = infra.HTTPMetrics
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if observer != nil {
		r.Use(middleware.Metrics(observer))
	}
	r.Use(
		middleware.CORS(cfg.CORS.DefaultOrigin),
		middleware.BodyLimit(cfg.App.MaxRequestBodyBytes),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	login := controllers.AuthLogin(svc.Auth, logg)
	register := controllers.AuthRegister(svc.Auth, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, infra.Store, redisPinger))
	})
	if cfg.Metrics.Enabled && infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	// Legacy clients post credentials to the bare paths.
	r.Group(func(r chi.Router) {
		r.Use(infra.RateLimiter.Handler)
		r.With(middleware.AuthRateLimit(loginPolicy, counters, logg)).Post("/login", login)
		r.With(middleware.AuthRateLimit(registerPolicy, counters, logg)).Post("/register", register)
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(infra.RateLimiter.Handler)
			r.With(middleware.AuthRateLimit(loginPolicy, counters, logg)).Post("/login", login)
			r.With(middleware.AuthRateLimit(registerPolicy, counters, logg)).Post("/register", register)

			r.Get("/meals", controllers.MealList(svc.Meals, logg))
			r.Get("/meals/{id}", controllers.MealGet(svc.Meals, logg))
			r.Get("/categories", controllers.Categories(svc.Collections, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, svc.Users, logg))
			r.Use(infra.RateLimiter.Handler)
			r.Use(middleware.Idempotency(idempotency, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleHomemaker))
				r.Post("/meals", controllers.MealCreate(svc.Meals, logg))
				r.Patch("/meals/{id}", controllers.MealUpdate(svc.Meals, logg))
				r.Delete("/meals/{id}", controllers.MealDelete(svc.Meals, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleCustomer))
				r.Get("/cart", controllers.CartGet(svc.Cart, logg))
				r.Post("/cart", controllers.CartAdd(svc.Cart, logg))
				r.Delete("/cart", controllers.CartClear(svc.Cart, logg))
				r.Patch("/cart/{mealId}", controllers.CartSetQuantity(svc.Cart, logg))
				r.Delete("/cart/{mealId}", controllers.CartRemove(svc.Cart, logg))

				r.Post("/orders", controllers.OrderCreate(svc.Orders, logg))
				r.Post("/reviews", controllers.ReviewCreate(svc.Reviews, logg))
			})

			r.Get("/orders", controllers.OrderList(svc.Orders, logg))
			r.Get("/orders/{id}", controllers.OrderGet(svc.Orders, logg))
			r.Patch("/orders/{id}", controllers.OrderUpdateStatus(svc.Orders, logg))

			r.Route("/delivery/orders", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleDelivery))
				r.Get("/available", controllers.DeliveryAvailable(svc.Delivery, logg))
				r.Get("/current", controllers.DeliveryCurrent(svc.Delivery, logg))
				r.Post("/{id}/status", controllers.DeliveryUpdateStatus(svc.Delivery, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleHomemaker, enums.RoleDelivery))
				r.Get("/earnings/summary", controllers.EarningsSummary(svc.Earnings, logg))
				r.Get("/earnings/history", controllers.EarningsHistory(svc.Earnings, logg))
				r.Get("/earnings/chart", controllers.EarningsChart(svc.Earnings, logg))
				r.Get("/payouts", controllers.PayoutList(svc.Earnings, logg))
				r.Post("/payouts", controllers.PayoutRequest(svc.Earnings, logg))
			})

			r.Get("/users/me", controllers.UserMe(svc.Users, logg))
			r.Get("/users/{id}", controllers.UserGet(svc.Users, logg))
			r.Patch("/users/{id}", controllers.UserUpdate(svc.Users, logg))

			r.Get("/reviews", controllers.ReviewList(svc.Reviews, logg))

			r.Get("/{resource}", controllers.CollectionList(svc.Collections, logg))
			r.Get("/{resource}/{id}", controllers.CollectionGet(svc.Collections, logg))
			readOnly := controllers.CollectionReadOnly(logg, "cart", "delivery", "earnings")
			for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
				r.Method(method, "/{resource}", readOnly)
				r.Method(method, "/{resource}/{id}", readOnly)
			}
		})
	})

	return r
}
