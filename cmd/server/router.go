package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inova/internal/audit"
	"inova/internal/auth"
	"inova/internal/platform/config"
	"inova/internal/platform/metrics"
	"inova/internal/platform/middleware"
	"inova/internal/ratelimit"
	"inova/internal/registration"
	"inova/pkg/apierrors"
	"inova/pkg/platform/httputil"
)

func newRouter(
	cfg *config.Config,
	log *slog.Logger,
	m *metrics.Metrics,
	auditor *audit.Service,
	limiter *ratelimit.Middleware,
	authHandler *auth.Handler,
	verifier *auth.SessionVerifierAdapter,
	registrationHandler *registration.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.ClientMetadata(cfg.Server.TrustProxy))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Limit("global", cfg.RateLimit.GlobalLimit))

		registrationHandler.PublicRoutes(r)

		// The login limiter must reject before any credential work happens.
		r.With(limiter.Limit("login", cfg.RateLimit.LoginLimit)).
			Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(verifier, auditor, log))
			r.Get("/verify-token", authHandler.VerifyToken)
			registrationHandler.AdminRoutes(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, apierrors.New(apierrors.CodeNotFound, "route not found"))
	})

	return r
}
