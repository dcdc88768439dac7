package api

import (
	"customer-service/internal/api/handler"
	mw "customer-service/internal/api/middleware"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"log/slog"
	"net/http"
	"time"

	_ "customer-service/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const jsonContentType = "application/json"

// SetupRouter wires middleware and routes. The caller owns the rate limiter
// and stops it on shutdown.
func SetupRouter(customerService customer.CustomerService, limiter *mw.RateLimiterMiddleware, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, limiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupIndexRoutes(router, cfg)
	setupCustomerRoutes(router, cfg, customerService, logger)
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, limiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	if limiter != nil {
		router.Use(limiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupIndexRoutes(router *chi.Mux, cfg *config.Config) {
	h := handler.NewIndexHandler(cfg.Server.BaseURL)
	router.Get("/", h.Index)
	router.Get("/health", h.Health)
}

func setupCustomerRoutes(r chi.Router, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, cfg.Server.BaseURL, logger)
	requireJSON := mw.RequireContentType(jsonContentType)

	r.Route("/customers", func(r chi.Router) {
		r.With(requireJSON).Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Delete("/reset", h.ResetCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.With(requireJSON).Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
			r.Put("/upgrade-credit", h.UpgradeCredit)
			r.Put("/downgrade-credit", h.DowngradeCredit)
		})
	})
}
