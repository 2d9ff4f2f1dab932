package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/familyledger/internal/api"
	"github.com/mmynk/familyledger/internal/auth"
	"github.com/mmynk/familyledger/internal/config"
	"github.com/mmynk/familyledger/internal/events"
	"github.com/mmynk/familyledger/internal/service"
	"github.com/mmynk/familyledger/internal/storage/sqlite"
	"github.com/mmynk/familyledger/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath, sqlite.WithTimeout(cfg.StoreTimeout))
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath, "timeout", cfg.StoreTimeout)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			slog.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		slog.Info("Publishing activity events", "exchange", cfg.AMQPExchange)
	}

	authService := service.NewAuthService(
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		store,
		slog.Default(),
	)
	server := api.NewServer(
		authService,
		service.NewGroupService(store, publisher),
		service.NewExpenseService(store, publisher),
		service.NewBillService(store, publisher),
		store,
		api.WithCORSOrigin(cfg.CORSOrigin),
	)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:           addr,
		Handler:        h2c.NewHandler(server.Handler(), &http2.Server{}),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	// Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}

	slog.Info("Server stopped gracefully")
}
