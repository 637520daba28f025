package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zachmicha/inno-shop/internal/config"
	"github.com/zachmicha/inno-shop/internal/domain"
	"github.com/zachmicha/inno-shop/internal/handler"
	"github.com/zachmicha/inno-shop/internal/repository/postgres"
	"github.com/zachmicha/inno-shop/internal/repository/sqlite"
	"github.com/zachmicha/inno-shop/internal/service"
	"github.com/zachmicha/inno-shop/internal/token"
)

// backend bundles the database lifecycle with its repositories.
type backend interface {
	domain.Database
	Users() domain.UserRepository
	Tokens() domain.ActionTokenRepository
}

func openBackend(cfg *config.Config) (backend, error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		return sqlite.New(cfg.DatabaseDSN)
	case "postgres":
		return postgres.New(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := openBackend(cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "driver", cfg.DatabaseDriver)

	credentials := service.NewCredentialService(db.Users(), db.Tokens(), cfg.BcryptCost, cfg.ConfirmTokenTTL, cfg.ResetTokenTTL)
	issuer := token.NewIssuer(cfg.JWT)
	auth := service.NewAuthService(credentials, issuer)

	// Roughly one credential request per second per client, small burst.
	limiter := service.NewTokenBucket(1, 10)
	defer limiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, limiter)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
