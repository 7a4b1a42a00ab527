package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dropguard/dashboard/internal/auth"
	"github.com/dropguard/dashboard/internal/backend"
	"github.com/dropguard/dashboard/internal/config"
	"github.com/dropguard/dashboard/internal/dashboard"
	"github.com/dropguard/dashboard/internal/middleware"
	"github.com/dropguard/dashboard/internal/navigation"
	"github.com/dropguard/dashboard/internal/store"
	"github.com/dropguard/dashboard/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting DropGuard dashboard",
		zap.String("env", cfg.Env),
		zap.String("profile", cfg.Session.Profile),
	)

	ctx := context.Background()

	// Open the session store
	sessionStore, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer closeStore()

	// The one provider and router for this profile
	provider := auth.NewProvider(ctx, sessionStore, token.NewCodec(), logger.Named("auth"))
	router := navigation.NewRouter(provider, func(route string) {
		logger.Info("Navigate", zap.String("route", route))
	}, logger.Named("navigation"))
	defer router.Close()

	logger.Info("Session ready", zap.String("landing", router.Target()))

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.Named("backend"))
	handler := dashboard.NewHandler(provider, router, backendClient, logger)

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Global middleware
	allowedOrigins := middleware.ParseAllowedOrigins(cfg.CORS.AllowedOrigins)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(allowedOrigins))
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.Logger(logger))
	engine.Use(middleware.Metrics())

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.Register(engine)

	// No WriteTimeout: page handlers wait on the backend, which may have none
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("backend", cfg.Backend.BaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
