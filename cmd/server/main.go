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

	"github.com/prometheus/client_golang/prometheus"

	"inova/internal/audit"
	"inova/internal/auth"
	"inova/internal/platform/config"
	"inova/internal/platform/httpserver"
	"inova/internal/platform/logger"
	"inova/internal/platform/metrics"
	platformredis "inova/internal/platform/redis"
	"inova/internal/ratelimit"
	"inova/internal/registration"
	"inova/internal/token"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger configuration depends on cfg, so bootstrap errors go to a
		// bare default logger.
		logger.New("production").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)

	if cfg.Admin.Email == config.DevAdminEmail {
		log.Warn("running with development fallback credentials, do not expose this instance")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	auditor := audit.NewService(log)

	store, err := registration.NewSQLiteStore(cfg.Database.Path, cfg.Database.QueryTimeout, log)
	if err != nil {
		log.Error("opening registration store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	creds, err := auth.NewCredentials(cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		log.Error("building admin credentials", "error", err)
		os.Exit(1)
	}

	tokens := token.NewService(cfg.Token.SigningKey, cfg.Token.Issuer, cfg.Token.Audience, cfg.Token.TTL)
	authService := auth.NewService(creds, tokens, auditor, m, log)
	registrationService := registration.NewService(store, auditor, m, log)

	limiterStore, redisClient := newLimiterStore(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	limiter := ratelimit.New(limiterStore, log, m, cfg.RateLimit.Window,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled))

	router := newRouter(cfg, log, m, auditor, limiter,
		auth.NewHandler(authService, log, cfg.IsProduction()),
		auth.NewSessionVerifierAdapter(authService),
		registration.NewHandler(registrationService, log, cfg.Server.Env),
	)

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// newLimiterStore picks the shared Redis window store when a URL is
// configured, otherwise the in-process one.
func newLimiterStore(cfg *config.Config, log *slog.Logger) (ratelimit.Store, *platformredis.Client) {
	if cfg.Redis.URL == "" {
		return ratelimit.NewMemoryStore(), nil
	}

	client, err := platformredis.New(cfg.Redis.URL)
	if err != nil || client == nil {
		log.Warn("redis unavailable, falling back to in-memory rate limiting", "error", err)
		return ratelimit.NewMemoryStore(), nil
	}
	log.Info("rate limiting backed by redis")
	return ratelimit.NewRedisStore(client), client
}
