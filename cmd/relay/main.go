//	@title			Upload Relay API
//	@version		1.0
//	@description	Relays course-media uploads to S3-compatible object storage and mints direct-upload URLs.
//
//	@host		localhost:3000
//	@BasePath	/

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/adityavivek11/upload-relay/internal/config"
	appMiddleware "github.com/adityavivek11/upload-relay/internal/middleware"
	"github.com/adityavivek11/upload-relay/internal/relay"
	"github.com/adityavivek11/upload-relay/internal/storage"

	_ "github.com/adityavivek11/upload-relay/docs/swagger"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewMinioStore(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.PublicBaseURL,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("create staging dir %q: %v", cfg.UploadDir, err)
	}

	svc := relay.NewService(store, cfg.PresignExpiry)
	handler := relay.NewHandler(svc, cfg.UploadDir)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handler.Health)
	r.Get("/", handler.Index)
	r.Post("/upload", handler.Upload)
	r.Post("/generate-upload-url", handler.GenerateUploadURL)

	// Swagger UI — available at http://localhost:3000/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// Upload bodies can be large and slow; only the header read is bounded.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("upload relay running at http://localhost:%s (env=%s)", cfg.Port, cfg.AppEnv)
		cfg.LogStatus()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
