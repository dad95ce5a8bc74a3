package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/http/handler"
	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/metrics"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Health    *handler.HealthHandler
	Products  *handler.ProductHandler
	Reviews   *handler.ReviewHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Webhooks  *handler.WebhookHandler
	Orders    *handler.OrderHandler
	Refunds   *handler.RefundHandler
	SMS       *handler.SMSHandler
	Analytics *handler.AnalyticsHandler
	Users     *handler.UserHandler
}

// Router holds HTTP handlers and router configuration
type Router struct {
	handlers       Handlers
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	logger         *logger.Logger
	cfg            *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	handlers Handlers,
	m *metrics.Metrics,
	metricsHandler http.Handler,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		handlers:       handlers,
		metrics:        m,
		metricsHandler: metricsHandler,
		logger:         log,
		cfg:            cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	h := rt.handlers
	authn := middleware.NewAuthenticator(rt.cfg.Auth, rt.logger)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(middleware.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Health)
	if rt.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", rt.metricsHandler)
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// signed by the gateway; no session or token
	r.Post("/webhooks/stripe", h.Webhooks.Stripe)

	r.With(middleware.CronToken(rt.cfg.Auth.CronToken)).Post("/internal/sms/tick", h.SMS.Tick)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.GuestSession(rt.cfg.Auth))
		r.Use(authn.OptionalAuth)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/popular", h.Products.Popular)
			r.Get("/search", h.Products.Search)
			r.Get("/{id}", h.Products.GetByID)
			r.Get("/{id}/reviews", h.Reviews.GetByProductID)
			r.With(middleware.RequireAuth).Put("/{id}/reviews", h.Reviews.Upsert)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items", h.Cart.UpdateQuantity)
			r.Delete("/items/{productId}", h.Cart.RemoveItem)
			r.With(middleware.RequireAuth).Post("/merge", h.Cart.Merge)
		})

		r.Post("/checkout", h.Checkout.Create)
		r.Post("/checkout/confirm", h.Checkout.Confirm)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", h.Users.Me)
			r.Put("/me", h.Users.UpdateMe)

			r.Get("/orders", h.Orders.ListMine)
			r.Get("/orders/{id}", h.Orders.GetMine)
			r.Post("/orders/{id}/refund", h.Refunds.Request)
			r.Get("/refunds", h.Refunds.ListMine)

			r.Post("/reviews/{id}/report", h.Reviews.Report)
			r.Post("/reviews/{id}/helpful", h.Reviews.Vote)
			r.Delete("/reviews/{id}", h.Reviews.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Get("/dashboard", h.Analytics.Dashboard)

			r.Post("/products", h.Products.Create)
			r.Put("/products/{id}", h.Products.Update)
			r.Delete("/products/{id}", h.Products.Delete)
			r.Get("/products/{id}/events", h.Analytics.ProductSeries)

			r.Get("/orders", h.Orders.List)
			r.Get("/orders/{id}", h.Orders.Get)
			r.Patch("/orders/{id}/status", h.Orders.UpdateStatus)

			r.Get("/refunds", h.Refunds.List)
			r.Post("/refunds/{id}/approve", h.Refunds.Approve)
			r.Post("/refunds/{id}/reject", h.Refunds.Reject)

			r.Get("/reviews", h.Reviews.ListByStatus)
			r.Patch("/reviews/{id}", h.Reviews.Moderate)

			r.Get("/sms", h.SMS.List)
			r.Post("/sms", h.SMS.Enqueue)
			r.Get("/sms/{id}", h.SMS.Get)
			r.Delete("/sms/{id}", h.SMS.Cancel)
		})
	})

	return r
}
