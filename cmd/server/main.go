package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/RavinduThilinaka/pdf-conventor/internal/config"
	"github.com/RavinduThilinaka/pdf-conventor/internal/logging"
	"github.com/RavinduThilinaka/pdf-conventor/internal/pdf"
	"github.com/RavinduThilinaka/pdf-conventor/internal/preview"
	"github.com/RavinduThilinaka/pdf-conventor/internal/progress"
	"github.com/RavinduThilinaka/pdf-conventor/internal/server"
	"github.com/RavinduThilinaka/pdf-conventor/internal/version"
	"github.com/RavinduThilinaka/pdf-conventor/internal/workspace"
)

const evictionInterval = 1 * time.Minute

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(srv *server.Server, hub *progress.Hub, stopEviction func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.WithError(err).Error("Server shutdown error")
		}

		hub.Stop()
		stopEviction()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version)

	previews := preview.NewStore()
	generator := pdf.New(clock, cfg.FinalizeDelay)

	manager := workspace.NewManager(previews, generator, clock, workspace.Options{
		TTL:      cfg.WorkspaceTTL,
		AddDelay: cfg.AddDelay,
	})
	stopEviction := manager.StartEvictionTimer(evictionInterval)

	hub := progress.NewHub()

	srv, err := server.NewServer(cfg, manager, previews, hub)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, hub, stopEviction)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
