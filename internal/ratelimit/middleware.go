package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"inova/internal/platform/metrics"
	"inova/pkg/apierrors"
	"inova/pkg/platform/httputil"
	"inova/pkg/requestcontext"
)

// Middleware applies fixed-window limits keyed by endpoint class and client
// IP.
type Middleware struct {
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	window   time.Duration
	disabled bool
}

// Option configures the middleware.
type Option func(*Middleware)

// WithDisabled turns rate limiting off entirely (tests, demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(store Store, logger *slog.Logger, m *metrics.Metrics, window time.Duration, opts ...Option) *Middleware {
	mw := &Middleware{
		store:   store,
		logger:  logger,
		metrics: m,
		window:  window,
	}
	for _, opt := range opts {
		opt(mw)
	}
	if mw.disabled {
		logger.Info("rate limiting disabled")
	}
	return mw
}

// Limit returns middleware enforcing the given budget per IP per window for
// one endpoint class. A store failure is logged and the request passes:
// losing the limiter must not take down the API.
func (m *Middleware) Limit(class string, limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.check(ctx, class+":"+ip, limit)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed", "error", err, "class", class)
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result)

			if !result.Allowed {
				m.metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, apierrors.New(apierrors.CodeRateLimited,
					"too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) check(ctx context.Context, key string, limit int) (*Result, error) {
	count, resetAt, err := m.store.Incr(ctx, key, m.window)
	if err != nil {
		return nil, err
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:    count <= int64(limit),
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: int(time.Until(resetAt).Seconds()) + 1,
	}, nil
}

func addHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
