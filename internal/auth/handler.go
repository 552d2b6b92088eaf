package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"inova/internal/platform/middleware"
	"inova/pkg/apierrors"
	"inova/pkg/platform/httputil"
	"inova/pkg/requestcontext"
)

// Handler serves the login, logout and token verification endpoints.
type Handler struct {
	service       *Service
	logger        *slog.Logger
	secureCookies bool
}

func NewHandler(service *Service, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// Routes mounts the public auth endpoints. verify-token is registered by the
// caller behind the auth gate.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials, sets the HTTP-only session cookie and returns
// the token in the body for clients that prefer the Authorization header.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apierrors.New(apierrors.CodeValidation, "invalid request body"))
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httputil.WriteError(w, apierrors.New(apierrors.CodeValidation, "email and password are required"))
		return
	}
	if !govalidator.IsEmail(req.Email) {
		httputil.WriteError(w, apierrors.New(apierrors.CodeValidation, "invalid email format"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   result.ExpiresIn,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteSuccess(w, http.StatusOK, "login successful", map[string]any{
		"token":     result.Token,
		"expiresIn": result.ExpiresIn,
		"user": map[string]any{
			"email": result.Email,
			"role":  result.Role,
		},
	})
}

// Logout clears the session cookie. Tokens are self-contained, so there is
// no server-side session to invalidate.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteSuccess(w, http.StatusOK, "logout successful", nil)
}

// VerifyToken reports the identity behind the current session. It runs
// behind the auth gate, so reaching it means the token already validated.
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	admin := requestcontext.Admin(r.Context())
	if admin.Email == "" {
		httputil.WriteError(w, apierrors.New(apierrors.CodeAuthInvalid, "authentication required"))
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "token is valid", map[string]any{
		"user": map[string]any{
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}
