package auth

import (
	"inova/internal/platform/middleware"
)

// SessionVerifierAdapter satisfies middleware.SessionVerifier without the
// middleware package importing the token internals.
type SessionVerifierAdapter struct {
	service *Service
}

func NewSessionVerifierAdapter(service *Service) *SessionVerifierAdapter {
	return &SessionVerifierAdapter{service: service}
}

func (a *SessionVerifierAdapter) VerifySession(raw string) (*middleware.SessionClaims, error) {
	claims, err := a.service.Verify(raw)
	if err != nil {
		return nil, err
	}
	return &middleware.SessionClaims{
		Email:    claims.Email,
		Role:     claims.Role,
		OriginIP: claims.OriginIP,
	}, nil
}
