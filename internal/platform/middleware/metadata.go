package middleware

import (
	"net"
	"net/http"
	"strings"

	"inova/pkg/requestcontext"
)

// ClientMetadata computes the caller's network address from the transport
// layer and stores it, with the User-Agent, in the request context. The
// value lives in its own context slot so the auth gate can never overwrite
// it with identity data, and vice versa. Forwarded headers are only
// consulted when the deployment explicitly trusts its proxy.
func ClientMetadata(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r)
			if trustProxy {
				if forwarded := forwardedFor(r); forwarded != "" {
					ip = forwarded
				}
			}
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// forwardedFor returns the leftmost X-Forwarded-For entry, the address the
// first trusted proxy saw.
func forwardedFor(r *http.Request) string {
	raw := r.Header.Get("X-Forwarded-For")
	if raw == "" {
		return ""
	}
	if idx := strings.IndexByte(raw, ','); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}
