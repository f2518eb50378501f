package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/authz"
	"github.com/empanadas-abdonur/api/internal/availability"
	"github.com/empanadas-abdonur/api/internal/cache"
	"github.com/empanadas-abdonur/api/internal/config"
	"github.com/empanadas-abdonur/api/internal/handler"
	"github.com/empanadas-abdonur/api/internal/metrics"
	mw "github.com/empanadas-abdonur/api/internal/middleware"
	"github.com/empanadas-abdonur/api/internal/service"
	"github.com/empanadas-abdonur/api/internal/store"
)

// New creates a Chi router with all application routes wired up.
// The admin surface sits behind JWT authentication and the admin gate;
// the storefront endpoints are public. orders may be nil when Redis is
// not configured.
func New(cfg *config.Config, queries *store.Queries, orders *cache.OrderListCache, monitor *availability.Monitor) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",              // Next.js dev server
			"https://empanadasabdonur.com",       // Production storefront
			"https://admin.empanadasabdonur.com", // Production admin panel
		},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Authentication strategy. With auth disabled every request carries a
	// static identity and the gate waves everyone through as super_admin.
	var (
		gate   authz.Authorizer
		authMW func(http.Handler) http.Handler
	)
	if cfg.Auth.Disabled {
		zap.L().Warn("admin authentication is disabled")
		gate = authz.NewAllowAll()
		authMW = mw.StaticIdentity(uuid.Nil)
	} else {
		gate = authz.NewGate(queries)
		authMW = mw.Authenticate(cfg.Auth.JWTSecret)
	}

	// A nil *cache.OrderListCache must stay a nil interface downstream.
	var listCache handler.ListCache
	var orderCache service.OrderCache
	if orders != nil {
		listCache = orders
		orderCache = orders
	}

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, gate, cfg.Auth.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Storefront routes (public)
	branchHandler := handler.NewBranchHandler(queries, monitor)
	menuHandler := handler.NewMenuHandler(queries)
	orderService := service.NewOrderService(queries, orderCache, cfg.Business.MinOrderItems)
	orderHandler := handler.NewOrderHandler(orderService, cfg.Business.WhatsAppBaseURL)

	r.Route("/branches", func(r chi.Router) {
		branchHandler.RegisterRoutes(r, func(r chi.Router) {
			menuHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)
		})
	})

	// Admin panel routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(authMW)

		authHandler.RegisterSessionRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			adminOrderHandler := handler.NewAdminOrderHandler(queries, gate, listCache)
			adminOrderHandler.RegisterRoutes(r)

			adminBranchHandler := handler.NewAdminBranchHandler(queries, gate)
			adminBranchHandler.RegisterRoutes(r)
		})
	})

	zap.L().Info("router initialized")
	return r
}
