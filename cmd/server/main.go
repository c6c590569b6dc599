package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubhouse/internal/server/api"
	"clubhouse/internal/server/auth"
	"clubhouse/internal/server/config"
	"clubhouse/internal/server/database"
	"clubhouse/internal/server/service"
	"clubhouse/internal/server/storage"
)

func main() {
	// Structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg := config.Load()
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"upload_root", cfg.UploadRoot,
		"session_ttl", cfg.SessionTTL,
		"sweep_interval", cfg.SweepInterval,
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations complete")

	// Initialize the upload tree
	tree := storage.NewTree(cfg.UploadRoot)
	if err := tree.EnsureRoot(); err != nil {
		slog.Error("failed to initialize upload root", "error", err)
		os.Exit(1)
	}
	slog.Info("upload root initialized", "path", cfg.UploadRoot)

	// Initialize repository and services
	repo := database.NewRepository(db)
	accounts := service.NewAccountService(repo, cfg.MembershipPasscode, cfg.BcryptCost)
	board := service.NewBoardService(repo)
	files := service.NewFileService(tree)
	sessions := auth.NewManager(repo, repo, cfg.SessionSecret, cfg.SessionTTL)

	// Start the session sweeper
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	sweeper := auth.NewSweeper(repo, cfg.SweepInterval)
	sweeper.Start(sweepCtx)

	// Setup HTTP router
	handler := api.NewHandler(accounts, board, files, sessions, db)
	e, err := api.SetupRouter(handler, sessions, cfg)
	if err != nil {
		slog.Error("failed to set up router", "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		slog.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil {
			slog.Info("server stopped", "reason", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down", "signal", sig)

	// Stop accepting new requests, finish in-flight with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Stop the session sweeper
	sweepCancel()
	sweeper.Wait()

	slog.Info("server exited cleanly")
}
