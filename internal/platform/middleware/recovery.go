package middleware

import (
	"log/slog"
	"net/http"

	"inova/pkg/apierrors"
	"inova/pkg/platform/httputil"
	"inova/pkg/requestcontext"
)

// Recovery converts panics into a generic 500 envelope. The panic value is
// logged server-side only; clients never see internals.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"request_id", requestcontext.RequestID(r.Context()),
					)
					httputil.WriteError(w, apierrors.New(apierrors.CodeInternal, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
