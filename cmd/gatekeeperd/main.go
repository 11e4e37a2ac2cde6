package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"rfid-access-backend/config"
	"rfid-access-backend/internal/access"
	"rfid-access-backend/internal/api"
	"rfid-access-backend/internal/db"
	"rfid-access-backend/internal/debounce"
	"rfid-access-backend/internal/notify"
	serialworker "rfid-access-backend/internal/serial"
	"rfid-access-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "gatekeeper ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	engine := access.NewEngine(gormDB)

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		alertPool := notify.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		alertPool.Start(ctx)
		engine.SetAlerter(alertPool)
		logger.Println("banned-scan alert pool started")
	} else {
		logger.Println("VAPID keys not configured; banned-scan alerts disabled")
	}

	cache, err := debounce.New(cfg.Debounce.Capacity, cfg.Debounce.TTL)
	if err != nil {
		logger.Fatalf("failed to initialize debounce cache: %v", err)
	}

	worker := serialworker.NewWorker(cfg.Serial, engine, cache)
	if worker.ShouldStart() {
		go worker.Run(ctx)
		logger.Printf("checkpoint link worker started on %s", cfg.Serial.Port)
	}

	router := api.NewRouter(appStore, engine, cfg, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
