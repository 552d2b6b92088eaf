package auth

import (
	"context"
	"log/slog"

	"inova/internal/audit"
	"inova/internal/platform/metrics"
	"inova/internal/token"
	"inova/pkg/apierrors"
	"inova/pkg/requestcontext"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so responses do not reveal which part failed.
var ErrInvalidCredentials = apierrors.New(apierrors.CodeAuthInvalid, "invalid credentials")

// LoginResult carries the issued session back to the handler.
type LoginResult struct {
	Token     string
	ExpiresIn int
	Email     string
	Role      string
}

// Service wires credential verification to token issuance.
type Service struct {
	creds   *Credentials
	tokens  *token.Service
	auditor *audit.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(creds *Credentials, tokens *token.Service, auditor *audit.Service, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		creds:   creds,
		tokens:  tokens,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// Login verifies the admin credentials and issues a session token bound to
// the caller's address. The password is always checked even when the email
// does not match, keeping the two failure paths close in timing.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	emailOK := s.creds.MatchesEmail(email)
	passwordOK := s.creds.VerifyPassword(password)

	if !emailOK || !passwordOK {
		s.metrics.IncLoginAttempt("failure")
		s.auditor.Emit(ctx, audit.ActionLoginFailure, email, "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	originIP := requestcontext.ClientIP(ctx)
	raw, err := s.tokens.Issue(s.creds.Email(), originIP)
	if err != nil {
		s.logger.ErrorContext(ctx, "token issuance failed", "error", err)
		return nil, apierrors.New(apierrors.CodeInternal, "could not create session")
	}

	s.metrics.IncLoginAttempt("success")
	s.auditor.Emit(ctx, audit.ActionLoginSuccess, s.creds.Email(), "")

	return &LoginResult{
		Token:     raw,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
		Email:     s.creds.Email(),
		Role:      token.AdminRole,
	}, nil
}

// Verify validates a raw session token.
func (s *Service) Verify(raw string) (*token.Claims, error) {
	return s.tokens.Verify(raw)
}

// SessionTTL exposes the token lifetime for cookie expiry.
func (s *Service) SessionTTL() int {
	return int(s.tokens.TTL().Seconds())
}
