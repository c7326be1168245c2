package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_api/internal/api"
	"todo_api/internal/app/service"
	"todo_api/internal/common/security"
	"todo_api/internal/domain/repository"
	"todo_api/internal/platform/cache"
	"todo_api/internal/platform/config"
	"todo_api/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.Println("Configuration loaded.")

	ctx := context.Background()

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Database unavailable: %v", err)
	}
	defer database.Close(db)

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Schema bootstrap failed: %v", err)
	}

	// 3. Initialize Redis (optional, backs login throttling)
	var limiter service.LoginLimiter
	if cfg.LoginThrottleEnabled() {
		rdb, err := cache.ConnectRedis(ctx, cfg)
		if err != nil {
			log.Printf("WARN: login throttling disabled: %v", err)
		} else {
			defer cache.CloseRedis(rdb)
			limiter = service.NewRedisLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginLockout)
			log.Println("Login throttling enabled.")
		}
	}

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	taskRepo := repository.NewPgTaskRepository(db)

	// 5. Initialize Services
	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)
	authService := service.NewAuthService(userRepo, tokens, limiter, cfg.AllowAdminRegistration)
	taskService := service.NewTaskService(taskRepo)
	adminService := service.NewAdminService(userRepo, taskRepo)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(tokens, authService, taskService, adminService, db)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown failed: %v", err)
		return
	}

	log.Println("Server stopped gracefully.")
}
