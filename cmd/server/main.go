package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/middleware"
	"github.com/anonto42/cinetrack/backend/internal/push"
	"github.com/anonto42/cinetrack/backend/internal/router"
	"github.com/anonto42/cinetrack/backend/pkg/config"
	"github.com/anonto42/cinetrack/backend/pkg/firebase"
	"github.com/anonto42/cinetrack/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var stores router.Stores
	if cfg.StoreMode == "memory" {
		stores = router.MemoryStores()
	} else {
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize databases: %v", err)
		}
		defer db.CloseDB()

		stores, err = router.PostgresStores(db.Postgres, db.MongoDatabase(cfg.MongoDatabase))
		if err != nil {
			log.Fatalf("Failed to prepare stores: %v", err)
		}
	}

	// Initialize Firebase when auth or push needs it
	var firebaseApp *firebase.App
	if cfg.UsesFirebase() {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	}

	var auth echo.MiddlewareFunc
	if cfg.AuthMode == "firebase" {
		auth = middleware.FirebaseAuthMiddleware(firebaseApp.AuthClient, stores.Users)
	} else {
		auth = middleware.JWTAuthMiddleware(cfg.JWTSecret)
	}

	var sender push.Sender
	if cfg.PushMode == "fcm" {
		sender = push.NewFCMSender(firebaseApp.Messaging)
	} else {
		sender = push.NewLogSender(logger)
	}

	queue, err := router.NewPushQueue(ctx, cfg, stores.Devices, sender, logger)
	if err != nil {
		log.Fatalf("Failed to initialize push queue: %v", err)
	}
	queue.Run(ctx)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, logger.Slog())

	// Setup routes and dependencies
	router.SetupRoutes(e, stores, auth, queue, logger)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	queue.Stop()
	log.Println("Push queue drained.")
}
