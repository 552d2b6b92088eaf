// Package audit emits structured security events. The registration table is
// the only persisted state in this service, so audit events go to the
// structured log rather than a store.
package audit

import (
	"context"
	"log/slog"

	"github.com/mssola/useragent"

	"inova/pkg/requestcontext"
)

// Actions recorded by the service.
const (
	ActionLoginSuccess        = "login_success"
	ActionLoginFailure        = "login_failure"
	ActionAccessDenied        = "access_denied"
	ActionRegistrationCreated = "registration_created"
	ActionRegistrationDeleted = "registration_deleted"
	ActionDataExport          = "data_export"
)

// Service writes audit events through the structured logger. The client
// address always comes from the request context's transport slot, never
// from token claims or request headers.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger.With("component", "audit")}
}

// Emit records one security event with the caller's transport metadata.
// Detail must never contain credentials or password material.
func (s *Service) Emit(ctx context.Context, action, email, detail string) {
	s.logger.InfoContext(ctx, action,
		"email", email,
		"ip", requestcontext.ClientIP(ctx),
		"user_agent", summarizeUserAgent(requestcontext.UserAgent(ctx)),
		"request_id", requestcontext.RequestID(ctx),
		"detail", detail,
	)
}

// summarizeUserAgent reduces a raw User-Agent header to browser/OS so logs
// stay readable and fingerprint-light.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	summary := name
	if version != "" {
		summary += "/" + version
	}
	if os := ua.OS(); os != "" {
		summary += " (" + os + ")"
	}
	return summary
}
