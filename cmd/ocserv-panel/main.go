// Package main is the entry point for the ocserv panel API server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ocserv-tools/ocserv-panel/internal/api"
	"github.com/ocserv-tools/ocserv-panel/internal/config"
	"github.com/ocserv-tools/ocserv-panel/internal/database"
	"github.com/ocserv-tools/ocserv-panel/internal/occtl"
	"github.com/ocserv-tools/ocserv-panel/internal/ocpasswd"
	"github.com/ocserv-tools/ocserv-panel/internal/repository"
	"github.com/ocserv-tools/ocserv-panel/internal/scheduler"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
	"github.com/ocserv-tools/ocserv-panel/pkg/logger"
	"github.com/ocserv-tools/ocserv-panel/pkg/version"
)

func main() {
	log.Printf("ocserv-panel %s (commit %s, built %s)", version.Version, version.Commit, version.BuildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Log configuration (without sensitive data)
	log.Printf("Database config: Host=%s, Port=%d, User=%s, Database=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Database)
	log.Printf("Server config: Address=%s", cfg.Server.Address)

	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel, !cfg.Environment.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection: %v", err)
		}
	}()

	// Apply pending schema migrations
	if err := database.Migrate(db, cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations: %v", err)
	}

	// GORM handle for the account and auth layer
	gdb, err := database.NewGormDB(cfg)
	if err != nil {
		logger.Fatal("Failed to open GORM connection: %v", err)
	}

	// Setup API router
	router := api.SetupRouter(db, gdb, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting ocserv panel API server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Background services share the same stateless wiring as the API layer
	ctl := occtl.NewService(&cfg.Ocserv)
	passwd := ocpasswd.NewService(&cfg.Ocserv)
	userRepo := repository.NewOcservUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	trafficRepo := repository.NewTrafficRepository(db)
	userSvc := services.NewOcservUserService(userRepo, settingsRepo, repository.NewTxManager(db), passwd, ctl)

	// Start user expiration scheduler
	expirationService := scheduler.NewUserExpirationService(userRepo, userSvc)
	expirationService.Start()

	// Start traffic accounting scheduler
	trafficCollector := scheduler.NewTrafficCollectorService(ctl, userRepo, trafficRepo, userSvc)
	trafficCollector.Start()
	defer trafficCollector.Stop()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("Shutting down server...")

	// Stop schedulers first
	expirationService.Stop()
	trafficCollector.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
