package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"inova/internal/audit"
	"inova/pkg/apierrors"
	"inova/pkg/platform/httputil"
	"inova/pkg/requestcontext"
)

// SessionCookieName is the cookie the login handler sets and the auth gate
// reads.
const SessionCookieName = "auth_token"

// SessionClaims is the subset of token claims the gate attaches to the
// request context.
type SessionClaims struct {
	Email    string
	Role     string
	OriginIP string
}

// SessionVerifier validates a raw session token.
type SessionVerifier interface {
	VerifySession(raw string) (*SessionClaims, error)
}

// RequireAdmin gates protected routes. The token is taken from the
// Authorization bearer header first, then from the session cookie. On
// success the verified identity is stored in its own context slot; the
// transport client address set by ClientMetadata is left untouched.
func RequireAdmin(verifier SessionVerifier, auditor *audit.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := extractToken(r)
			if raw == "" {
				auditor.Emit(ctx, audit.ActionAccessDenied, "", "missing token")
				httputil.WriteError(w, apierrors.New(apierrors.CodeAuthInvalid, "authentication required"))
				return
			}

			claims, err := verifier.VerifySession(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				auditor.Emit(ctx, audit.ActionAccessDenied, "", apierrors.MessageOf(err))
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithAdmin(ctx, requestcontext.AdminIdentity{
				Email: claims.Email,
				Role:  claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return strings.TrimSpace(after)
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
