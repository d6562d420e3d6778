package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/auth"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/config"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/database"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/handlers"
	middlewareCustom "github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/middleware"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/repositories"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/routes"
	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/services"
	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
	pkglogger "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	if err := middlewareCustom.InitSentry(cfg.Sentry.DSN, cfg.Server.Env); err != nil {
		logger.Error("failed to initialize sentry", slog.Any("error", err))
	}
	defer middlewareCustom.FlushSentry()

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.Pool)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db.Pool)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		[]byte(cfg.Auth.JWTSecret),
		cfg.Auth.AccessTokenValidity,
		cfg.Auth.RefreshTokenValidity,
		userRepo,
		logger,
	)

	// Initialize security services
	auditLogger := pkglogger.NewAuditLogger(logger)

	guard := services.NewLoginAttemptService(loginAttemptRepo, services.LoginAttemptConfig{
		MaxAttempts: cfg.Login.MaxAttempts,
		Window:      cfg.Login.Window,
	}, logger, auditLogger)

	failureDelay := auth.NewFailureDelay(cfg.Login.FailureDelay, cfg.Login.FailureJitter)

	// Initialize services
	userService := services.NewUserService(userRepo, logger)
	authService := services.NewAuthService(userRepo, guard, tokenManager, failureDelay, logger, auditLogger)

	// Bootstrap first admin user if configured
	if cfg.Auth.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		cancel()
		if err != nil {
			logger.Error("failed to ensure admin user", slog.Any("error", err))
		} else if !created {
			logger.Info("admin user already exists", slog.String("username", cfg.Auth.AdminUsername))
		}
	} else {
		logger.Info("no ADMIN_PASSWORD set, skipping admin user creation")
	}

	ipConfig := &pkghttp.IPConfig{
		TrustedProxies: cfg.Server.TrustedProxies,
		TrustAnyProxy:  cfg.Server.TrustAnyProxy(),
	}
	if ipConfig.TrustAnyProxy {
		logger.Warn("TRUSTED_PROXIES=* honours X-Forwarded-For from any client; per-address login limits can be evaded")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	userHandler := handlers.NewUserHandler(userService)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middlewareCustom.Recoverer(logger))
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, userHandler, tokenManager, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Server.RateLimitPerMinute,
		IPConfig:          ipConfig,
	}, db)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
