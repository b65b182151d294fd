package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zlovtnik/homeswift/internal/handlers"
	"github.com/zlovtnik/homeswift/internal/middleware"
	"github.com/zlovtnik/homeswift/pkg/auth"
)

const apiPrefix = "/api/v1"

// Handlers groups the route handlers mounted by the router
type Handlers struct {
	ServiceRequests *handlers.ServiceRequestHandler
	Pricing         *handlers.PricingHandler
	Admin           *handlers.AdminHandler
	Customers       *handlers.CustomerHandler
	Health          *handlers.HealthHandler
}

// Router holds all route handlers
type Router struct {
	mux       *http.ServeMux
	jwtSecret string
	logger    *slog.Logger
	h         Handlers
}

// NewRouter creates a new Router
func NewRouter(jwtSecret string, logger *slog.Logger, h Handlers) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		mux:       http.NewServeMux(),
		jwtSecret: jwtSecret,
		logger:    logger,
		h:         h,
	}
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {
	// Health and metrics endpoints (no auth required)
	r.mux.HandleFunc("GET /health", r.h.Health.Health)
	r.mux.HandleFunc("GET /ready", r.h.Health.Ready)
	r.mux.Handle("GET /metrics", promhttp.Handler())

	// Public booking endpoints
	r.public("POST /service-requests", r.h.ServiceRequests.Create)
	r.public("POST /quotes", r.h.ServiceRequests.Quote)
	r.public("GET /pricing/categories", r.h.Pricing.Categories)
	r.public("GET /pricing", r.h.Pricing.ByCategory)
	r.public("GET /pricing/all", r.h.Pricing.All)

	// Service request administration
	r.admin("GET /service-requests", r.h.ServiceRequests.List)
	r.admin("GET /service-requests/{id}", r.h.ServiceRequests.Get)
	r.admin("GET /service-requests/{id}/history", r.h.ServiceRequests.History)
	r.admin("PATCH /service-requests/{id}", r.h.ServiceRequests.Update)
	r.admin("POST /service-requests/{id}/assign", r.h.ServiceRequests.Assign)

	// Admin actions and reports
	r.admin("POST /admin/send-reminders", r.h.Admin.SendReminders)
	r.admin("POST /admin/seed-pricing", r.h.Admin.SeedPricing)
	r.admin("GET /admin/stats", r.h.Admin.Stats)
	r.admin("GET /admin/financial-report", r.h.Admin.FinancialReport)

	// Customer registry
	r.admin("GET /customers", r.h.Customers.Lookup)
	r.admin("GET /customers/{id}", r.h.Customers.Get)

	// Apply middleware stack
	var handler http.Handler = r.mux

	// Metrics must see the routed pattern
	handler = middleware.MetricsMiddleware(handler)

	// Logging
	handler = middleware.LoggingMiddleware(r.logger)(handler)

	// Recovery
	handler = middleware.RecoveryMiddleware(r.logger)(handler)

	return handler
}

// public mounts a handler under the API prefix without auth.
// pattern is "METHOD /path".
func (r *Router) public(pattern string, h http.HandlerFunc) {
	r.mux.Handle(prefixed(pattern), h)
}

// admin mounts a handler under the API prefix behind the admin role check
func (r *Router) admin(pattern string, h http.HandlerFunc) {
	r.mux.Handle(prefixed(pattern), middleware.RequireRole(r.jwtSecret, auth.RoleAdmin)(h))
}

func prefixed(pattern string) string {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return apiPrefix + pattern
	}
	return method + " " + apiPrefix + path
}
