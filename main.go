package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"vtube-api/internal/config"
	"vtube-api/internal/container"
	"vtube-api/internal/handler"
	"vtube-api/internal/middleware"
	"vtube-api/pkg/logger"
	"vtube-api/pkg/response"
)

// Resources holds all resources that need cleanup
type Resources struct {
	c      *container.Container
	server *http.Server
	log    *logger.Logger
	mu     sync.Mutex
	closed bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// Stop the cleanup worker so in-flight deletions drain
	if r.c.Cleanup != nil {
		r.log.Info("Stopping media cleanup service...")
		if err := r.c.Cleanup.Stop(ctx); err != nil {
			r.log.WithError(err).Error("Failed to stop media cleanup service")
			errs = append(errs, fmt.Errorf("cleanup service shutdown: %w", err))
		}
	}

	if r.c.RedisClient != nil {
		r.log.Info("Closing Redis connection...")
		if err := r.c.RedisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		}
	}

	if r.c.DB != nil {
		r.log.Info("Closing database connection pool...")
		r.c.DB.Close()
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting vtube-api server")

	ctx := context.Background()
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	if err := c.Cleanup.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start media cleanup service")
	}

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	resources := &Resources{
		c:      c,
		server: server,
		log:    log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.Config
	log := c.Logger

	r := chi.NewRouter()

	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c.DB, c.RedisClient, log)
	subscriptionHandler := handler.NewSubscriptionHandler(c.Subscriptions, log)
	videoHandler := handler.NewVideoHandler(c.Videos, log)

	wrap := func(fn response.HandlerFunc) http.HandlerFunc {
		return response.Wrap(log, fn)
	}

	// Health check (no auth required)
	r.Get("/health", wrap(healthHandler.Check))

	r.Route("/api", func(r chi.Router) {
		// All subscription and video routes require the caller identity
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, log))

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/subscribed", wrap(subscriptionHandler.CountSubscribed))
				r.Post("/{channelId}", wrap(subscriptionHandler.Toggle))
				r.Get("/{channelId}/subscribers", wrap(subscriptionHandler.ListSubscribers))
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", wrap(videoHandler.List))
				r.Post("/", wrap(videoHandler.Publish))
				r.Get("/{videoId}", wrap(videoHandler.Get))
				r.Patch("/{videoId}", wrap(videoHandler.Update))
				r.Delete("/{videoId}", wrap(videoHandler.Delete))
				r.Patch("/{videoId}/publish", wrap(videoHandler.TogglePublish))
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"statusCode":404,"message":"Endpoint not found","success":false,"errors":[]}`))
	})

	log.Info("Router configured successfully")
	return r
}
