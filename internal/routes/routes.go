package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/auth"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/handlers"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/middleware"
	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pre-authentication endpoints the gate never inspects
const (
	LoginPath   = "/api/v1/auth/login"
	RefreshPath = "/api/v1/auth/refresh"
)

// RegisterPath is public but still passes through the gate
const RegisterPath = "/api/v1/auth/register"

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	resolver auth.IdentityResolver,
	rateLimitConfig middleware.RateLimitConfig,
	db HealthChecker,
) {
	router.Get("/health", healthHandler(db))
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Gate(resolver, LoginPath, RefreshPath))

		// Public routes - no authentication required
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/refresh", authHandler.Refresh)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", userHandler.Register)

		// Protected routes - authentication required
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuthenticated)

			r.Get("/auth/me", authHandler.Me)
		})
	})
}

func healthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}

		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	}
}
