package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildsafe/safety-backend/internal/auth"
	"github.com/buildsafe/safety-backend/internal/blob"
	"github.com/buildsafe/safety-backend/internal/config"
	"github.com/buildsafe/safety-backend/internal/database"
	"github.com/buildsafe/safety-backend/internal/database/migrations"
	"github.com/buildsafe/safety-backend/internal/metrics"
	"github.com/buildsafe/safety-backend/internal/repository"
	"github.com/buildsafe/safety-backend/internal/server"
	"github.com/buildsafe/safety-backend/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if dbService != nil {
		log.Println("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		} else {
			log.Println("Database connection pool closed.")
		}
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Database and schema
	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := dbService.SQLDB()
	if err != nil {
		log.Fatalf("Failed to get sql.DB: %v", err)
	}
	log.Println("Applying database migrations...")
	if err := migrations.Up(sqlDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete.")

	// 3. Supporting infrastructure
	appMetrics := metrics.New()
	if err := appMetrics.RegisterDB(sqlDB, cfg.Database.Database); err != nil {
		log.Printf("Warning: database pool metrics unavailable: %v", err)
	}
	blobs, err := blob.Open(context.Background(), cfg.Blob)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}
	log.Printf("Blob store driver: %s", blobs.Driver())

	// 4. Repositories
	gormDB := dbService.GetDB()
	templateRepo := repository.NewGormTemplateRepository(gormDB)
	completionRepo := repository.NewGormCompletionRepository(gormDB)
	projectRepo := repository.NewGormProjectRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)

	// 5. Services
	gate := service.NewAccessGate(userRepo)
	deps := server.Deps{
		Templates:   service.NewTemplateService(templateRepo),
		Completions: service.NewCompletionService(templateRepo, completionRepo, projectRepo, userRepo, appMetrics),
		History:     service.NewHistoryService(templateRepo, completionRepo, projectRepo, userRepo),
		Projects:    service.NewProjectService(projectRepo),
		Admin:       service.NewAdminService(userRepo, gate),
		Gate:        gate,
		Tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Blobs:       blobs,
		Metrics:     appMetrics,
		DB:          dbService,
	}

	// 6. Server
	chiServer := server.NewServer(cfg, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(chiServer, dbService, done)

	log.Printf("Starting server on %s", chiServer.Addr)
	err = chiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server ListenAndServe error: %v", err)
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")
}
