/*
Package main is the entry point for the chatrelay server.

It loads configuration, initializes the global logging system, wires the
session registry and lifecycle handler to the WebSocket gateway, starts the
HTTP server, and handles operating system interrupt signals (SIGINT, SIGTERM)
for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay/internal/app/relay"
	"chatrelay/internal/app/session"
	"chatrelay/internal/configs"
	"chatrelay/internal/handler"
	"chatrelay/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("public_dir", cfg.PublicDir).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the core: registry -> gateway -> lifecycle handler
	registry := session.NewRegistry()
	gateway := handler.NewConnGateway()
	lifecycle := relay.NewHandler(registry, gateway)

	deps := &handler.AppDeps{
		Config:    cfg,
		Lifecycle: lifecycle,
		Gateway:   gateway,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Server is up on port %d!", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	gateway.Shutdown()

	logx.Info("Server gracefully stopped.")
}
