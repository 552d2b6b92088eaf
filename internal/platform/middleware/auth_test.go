package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inova/internal/audit"
	"inova/pkg/apierrors"
	"inova/pkg/requestcontext"
	"inova/pkg/testutil"
)

type fakeVerifier struct {
	claims *SessionClaims
	err    error
	seen   string
}

func (f *fakeVerifier) VerifySession(raw string) (*SessionClaims, error) {
	f.seen = raw
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func newAuthChain(verifier SessionVerifier) (http.Handler, *requestcontext.AdminIdentity, *string) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var gotAdmin requestcontext.AdminIdentity
	var gotIP string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAdmin = requestcontext.Admin(r.Context())
		gotIP = requestcontext.ClientIP(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	chain := ClientMetadata(false)(RequireAdmin(verifier, audit.NewService(logger), logger)(inner))
	return chain, &gotAdmin, &gotIP
}

func Test_RequireAdmin_MissingToken(t *testing.T) {
	chain, _, _ := newAuthChain(&fakeVerifier{})

	rr := testutil.DoRequest(chain, testutil.NewRequest(t, http.MethodGet, "/api/registrations"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	body := testutil.DecodeBody(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "authentication required", body["message"])
}

func Test_RequireAdmin_InvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: apierrors.New(apierrors.CodeAuthInvalid, "token has expired")}
	chain, _, _ := newAuthChain(verifier)

	req := testutil.NewRequest(t, http.MethodGet, "/api/registrations")
	req.Header.Set("Authorization", "Bearer stale")
	rr := testutil.DoRequest(chain, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "token has expired", testutil.DecodeBody(t, rr)["message"])
}

func Test_RequireAdmin_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	verifier := &fakeVerifier{claims: &SessionClaims{Email: "thais@example.com", Role: "admin"}}
	chain, _, _ := newAuthChain(verifier)

	req := testutil.NewRequest(t, http.MethodGet, "/api/registrations")
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	rr := testutil.DoRequest(chain, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "header-token", verifier.seen)
}

func Test_RequireAdmin_FallsBackToCookie(t *testing.T) {
	verifier := &fakeVerifier{claims: &SessionClaims{Email: "thais@example.com", Role: "admin"}}
	chain, _, _ := newAuthChain(verifier)

	req := testutil.NewRequest(t, http.MethodGet, "/api/registrations")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	rr := testutil.DoRequest(chain, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "cookie-token", verifier.seen)
}

func Test_RequireAdmin_IdentityDoesNotAliasClientAddress(t *testing.T) {
	// The token carries an origin address; the transport slot must keep the
	// connection's own address regardless.
	verifier := &fakeVerifier{claims: &SessionClaims{
		Email:    "thais@example.com",
		Role:     "admin",
		OriginIP: "10.0.0.99",
	}}
	chain, gotAdmin, gotIP := newAuthChain(verifier)

	req := httptest.NewRequest(http.MethodGet, "/api/registrations", nil)
	req.RemoteAddr = "192.0.2.44:52011"
	req.Header.Set("Authorization", "Bearer tok")
	rr := testutil.DoRequest(chain, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "thais@example.com", gotAdmin.Email)
	assert.Equal(t, "192.0.2.44", *gotIP)
}

func Test_ClientMetadata_TrustProxy(t *testing.T) {
	var gotIP string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
	})

	t.Run("untrusted proxy ignores forwarded header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.44:52011"
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		testutil.DoRequest(ClientMetadata(false)(inner), req)
		assert.Equal(t, "192.0.2.44", gotIP)
	})

	t.Run("trusted proxy uses leftmost forwarded entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.44:52011"
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		testutil.DoRequest(ClientMetadata(true)(inner), req)
		assert.Equal(t, "203.0.113.5", gotIP)
	})
}
