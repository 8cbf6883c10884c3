package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/api"
	"github.com/fitstudio/fitstudio-server/internal/config"
	"github.com/fitstudio/fitstudio-server/internal/identity"
	"github.com/fitstudio/fitstudio-server/internal/realtime"
	"github.com/fitstudio/fitstudio-server/internal/repository/postgres"
	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/fitstudio/fitstudio-server/internal/videohost"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// External collaborators
	identityClient := identity.NewClient(cfg.IdentityURL, cfg.IdentityServiceKey)
	videoClient := videohost.NewClient(cfg.VideoAPIURL, cfg.VideoAPIToken)

	// Session event hub
	hub := realtime.NewHub()
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, identityClient, videoClient, cfg)

	// Initialize router
	router := api.NewRouter(services, identityClient, repos, hub, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	hub.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
