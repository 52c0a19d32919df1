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

	redisv9 "github.com/redis/go-redis/v9"

	"auth_backend/internal/app/di"
	"auth_backend/internal/app/router"
	authhandler "auth_backend/internal/feature/auth/transport/handler"
	authusecase "auth_backend/internal/feature/auth/usecase"
	"auth_backend/internal/platform/config"
	"auth_backend/internal/platform/db"
	"auth_backend/internal/platform/http/handler"
	jwtmw "auth_backend/internal/platform/jwt"
	"auth_backend/internal/platform/logger"
	"auth_backend/internal/platform/password"
	infraredis "auth_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	userRepo, gdb, err := di.NewUserRepository(cfg)
	if err != nil {
		slog.Error("failed to open user store", "error", err)
		os.Exit(1)
	}
	if gdb != nil {
		defer func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
	}

	// Redis
	rdb := openRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Crypto
	hasher := password.NewHasher(password.Params{
		Memory:      cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	})
	issuer, err := jwtmw.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		slog.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}
	verifier := jwtmw.NewVerifier(cfg.JWTSecret)

	// Usecase / Handler
	authUC := authusecase.NewAuthUsecase(userRepo, hasher, issuer)
	signinLimiter := di.NewLimiter(rdb, "login", cfg.LoginRateLimit, cfg.LoginRateWindow)
	authH := authhandler.NewAuthHandler(authUC, signinLimiter)

	checks := map[string]handler.Check{}
	if gdb != nil {
		checks["db"] = func(context.Context) error { return db.Ping(gdb) }
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	r := router.NewRouter(router.Deps{
		Auth:      authH,
		Health:    handler.NewHealthHandler(checks),
		Verifier:  verifier,
		IPLimiter: di.NewLimiter(rdb, "ip", cfg.LoginRateLimit*4, cfg.LoginRateWindow),
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// openRedis returns a connected client, or nil when Redis is disabled or unreachable.
// Without Redis the limiters fall back to per-instance counters.
func openRedis(ctx context.Context, addr, password string) *redisv9.Client {
	rdb, err := infraredis.NewRedisClient(ctx, addr, password)
	switch {
	case errors.Is(err, infraredis.ErrDisabled):
		slog.Info("REDIS_ADDR not set. Rate limits are per instance.")
		return nil
	case err != nil:
		// 接続失敗の詳細はNewRedisClientがログ出力済み
		slog.Warn("Redis unavailable. Rate limits are per instance.")
		return nil
	}
	return rdb
}
