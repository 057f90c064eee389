// main is the entry point of the Lamp Academy API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (plus .env and env overrides)
//  2. Initialise the logger
//  3. Open the registrations database (PostgreSQL or SQLite)
//  4. Open the content mirror and load the site content
//  5. Connect the event publisher (Kafka, or a no-op)
//  6. Register all HTTP routes and start the server
//  7. Block until an OS signal arrives, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/lamp-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/lamp-api
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aanand-mishra/lamp-api/internal/config"
	"github.com/aanand-mishra/lamp-api/internal/content"
	"github.com/aanand-mishra/lamp-api/internal/events"
	contenthandler "github.com/aanand-mishra/lamp-api/internal/http/handlers/content"
	"github.com/aanand-mishra/lamp-api/internal/http/handlers/registration"
	"github.com/aanand-mishra/lamp-api/internal/http/middleware"
	"github.com/aanand-mishra/lamp-api/internal/storage"
	"github.com/aanand-mishra/lamp-api/internal/storage/bolt"
	"github.com/aanand-mishra/lamp-api/internal/storage/postgres"
	"github.com/aanand-mishra/lamp-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// The handlers log through the slog package functions, so the
	// configured logger also becomes the default.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting lamp-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Registration Storage ────────────────────────────────
	// The rest of the code only sees the storage.Registrations interface.
	store, err := openRegistrations(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	// ── 4. Initialise Site Content ────────────────────────────────────────
	// Missing or corrupt content is replaced by the built-in defaults, so
	// only an unopenable mirror file stops the boot.
	mirror, err := bolt.Open(cfg.ContentPath)
	if err != nil {
		log.Error("failed to open content mirror", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer mirror.Close()

	siteContent, err := content.Open(mirror, log)
	if err != nil {
		log.Error("failed to load content", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("content loaded", slog.String("path", cfg.ContentPath))

	// ── 5. Event Publisher ────────────────────────────────────────────────
	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Info("publishing registration events",
			slog.Any("brokers", cfg.Kafka.Brokers),
			slog.String("topic", cfg.Kafka.Topic))
	}

	// ── 6. Register HTTP Routes ───────────────────────────────────────────
	// Route table:
	//   POST   /api/registrations              → submit the public form
	//   GET    /api/registrations              → list, newest first
	//   PATCH  /api/registrations/{id}/status  → approve / reject / reset
	//   DELETE /api/registrations/{id}         → delete (idempotent)
	//   *      /api/content...                 → content admin API
	router := http.NewServeMux()

	router.HandleFunc("POST /api/registrations", registration.New(store, publisher))
	router.HandleFunc("GET /api/registrations", registration.List(store))
	router.HandleFunc("PATCH /api/registrations/{id}/status", registration.UpdateStatus(store, publisher))
	router.HandleFunc("DELETE /api/registrations/{id}", registration.Delete(store))

	contenthandler.Register(router, siteContent)

	server := &http.Server{
		Addr: cfg.HTTPServer.Addr,
		Handler: middleware.Chain(router,
			middleware.Logger(log),
			middleware.Timeout(cfg.HTTPServer.RequestTimeout),
		),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// openRegistrations picks PostgreSQL when a database URL is configured and
// falls back to the SQLite file otherwise.
func openRegistrations(cfg *config.Config) (storage.Registrations, error) {
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("storage initialised", slog.String("backend", "postgres"))
		return store, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		return nil, err
	}
	store, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		return nil, err
	}
	slog.Info("storage initialised",
		slog.String("backend", "sqlite"),
		slog.String("path", cfg.StoragePath))
	return store, nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
