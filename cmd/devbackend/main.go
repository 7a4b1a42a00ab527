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

	"github.com/dropguard/dashboard/internal/config"
	"github.com/dropguard/dashboard/internal/devbackend"
	"github.com/dropguard/dashboard/internal/middleware"
	"github.com/dropguard/dashboard/internal/token"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadDevBackend()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	directory, err := devbackend.NewDemoDirectory(cfg.DemoPassword, bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("Failed to build demo directory", zap.Error(err))
	}
	for _, id := range devbackend.DemoAccounts() {
		logger.Info("Demo account", zap.String("email", id.Email), zap.String("role", id.Role.String()))
	}

	issuer := token.NewIssuer(cfg.SecretKey, cfg.TokenTTL)
	server := devbackend.NewServer(directory, issuer, logger)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.Logger(logger))
	server.Register(engine)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting dev backend", zap.String("port", cfg.Port), zap.Duration("token_ttl", cfg.TokenTTL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Dev backend stopped")
}
