// Package token issues and verifies the signed session tokens that back the
// admin login. Tokens are self-contained: validity is determined entirely by
// the HMAC signature and the embedded claims, so no server-side session
// table exists. The trade-off (no revocation) is acceptable for a single
// admin identity with a short expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inova/pkg/apierrors"
)

// AdminRole is the only role ever embedded in a session token.
const AdminRole = "admin"

// Verification failure reasons, distinguishable via errors.Is.
var (
	ErrExpired   = apierrors.New(apierrors.CodeAuthInvalid, "token has expired")
	ErrMalformed = apierrors.New(apierrors.CodeAuthInvalid, "invalid token")
)

// Claims carries the session token payload. OriginIP records where the
// token was issued; it is informational for audit trails and is never
// trusted as the caller's current address.
type Claims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	OriginIP string `json:"origin_ip"`
	IssuedMS int64  `json:"issued_at"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with a process-wide secret.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
}

// NewService builds a token Service. An empty signing key is a fatal
// configuration error caught at startup by config validation, not here.
func NewService(signingKey, issuer, audience string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
	}
}

// TTL exposes the configured token lifetime for cookie expiry and responses.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token bound to the admin email and the network
// address the login originated from.
func (s *Service) Issue(email, originIP string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:    email,
		Role:     AdminRole,
		OriginIP: originIP,
		IssuedMS: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return t.SignedString(s.signingKey)
}

// Verify parses and validates a token. Issuer and audience are enforced so
// tokens minted by another deployment sharing the secret are rejected. As a
// defense in depth, the embedded issue timestamp is checked against the
// configured lifetime independently of the exp claim.
func (s *Service) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	if !parsed.Valid {
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrMalformed
	}

	// Age check independent of the exp claim.
	issuedAt := time.UnixMilli(claims.IssuedMS)
	if claims.IssuedMS == 0 || time.Since(issuedAt) > s.ttl {
		return nil, ErrExpired
	}

	return claims, nil
}
