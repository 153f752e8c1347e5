package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dailynote.app/notes-api/internal/config"
	"dailynote.app/notes-api/internal/database"
	"dailynote.app/notes-api/internal/llm"
	"dailynote.app/notes-api/internal/logging"
	"dailynote.app/notes-api/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine in deployments that pass real env vars.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	logging.Init()
	cfg := config.FromEnv()

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, db, llm.New(cfg))

	if cfg.ConsulRegister {
		registrar, err := server.NewRegistrar(cfg)
		if err != nil {
			slog.Error("failed to create registrar", "error", err)
			os.Exit(1)
		}
		if err := registrar.Register(cfg); err != nil {
			slog.Error("failed to register service", "error", err)
			os.Exit(1)
		}
		defer registrar.Deregister()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}
}
