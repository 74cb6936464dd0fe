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

	"github.com/pressly/goose/v3"

	"vsrthreads/backend/internal/cache"
	"vsrthreads/backend/internal/config"
	"vsrthreads/backend/internal/httpapi"
	"vsrthreads/backend/internal/service"
	"vsrthreads/backend/internal/store"
	"vsrthreads/backend/internal/store/memory"
	pgstore "vsrthreads/backend/internal/store/postgres"
	"vsrthreads/backend/internal/vault"
	"vsrthreads/backend/migrations"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		fatal("invalid security configuration", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		if err := runMigrations(pg); err != nil {
			fatal("migrations failed", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		slog.Info("repository ready", "kind", "postgres")
	} else {
		repo = memory.NewSeeded()
		slog.Info("repository ready", "kind", "in-memory")
	}

	summaries := cache.SummaryCache(cache.NoopSummaryCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSummaryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			slog.Warn("redis unavailable, using noop cache", "error", err)
		} else {
			summaries = redisCache
			closers = append(closers, redisCache.Close)
			slog.Info("cache ready", "kind", "redis")
		}
	} else {
		slog.Info("cache ready", "kind", "noop")
	}

	cipher, err := vault.NewCipher(cfg.VaultSecret)
	if err != nil {
		fatal("vault cipher", err)
	}

	svc := service.New(repo, summaries, cipher, time.Duration(cfg.SummaryTTLSeconds)*time.Second, cfg.LowStockThreshold)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, svc)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, cfg.MetricsEnabled)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("backend listening", "addr", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			slog.Error("close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func runMigrations(pg *pgstore.Store) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(pg.DB(), ".")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.VaultSecret) < 16 {
		return fmt.Errorf("VAULT_SECRET must be set and at least 16 characters")
	}
	return nil
}
