package registration

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"inova/pkg/apierrors"
	"inova/pkg/platform/httputil"
	"inova/pkg/requestcontext"
)

// Version reported by /api/status.
const Version = "2.0.2"

// Handler serves the public submission endpoint and the admin read side.
type Handler struct {
	service *Service
	logger  *slog.Logger
	env     string
}

func NewHandler(service *Service, logger *slog.Logger, env string) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		env:     env,
	}
}

// PublicRoutes mounts the endpoints reachable without a session.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/registrations", h.Create)
	r.Get("/status", h.Status)
}

// AdminRoutes mounts the endpoints the caller must place behind the auth
// gate.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/registrations", h.List)
	r.Delete("/registrations/{id}", h.Delete)
	r.Get("/statistics", h.Statistics)
	r.Get("/export", h.Export)
}

// Create handles the public sign-up form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		httputil.WriteError(w, apierrors.New(apierrors.CodeValidation, "invalid request body"))
		return
	}

	id, err := h.service.Submit(r.Context(), &sub)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "registration created successfully", map[string]any{
		"id": id,
	})
}

// List returns one page of registrations, password-free.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	search := r.URL.Query().Get("search")

	result := h.service.List(r.Context(), page, pageSize, search)
	httputil.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"data":       result.Items,
		"pagination": result.Pagination,
	})
}

// Delete removes one registration by its numeric id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httputil.WriteError(w, apierrors.New(apierrors.CodeValidation, "invalid registration id"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "registration deleted", nil)
}

// Statistics returns the dashboard aggregates.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"data": h.service.Statistics(r.Context()),
	})
}

// Export streams the full dataset in the requested format.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filename := "registrations-" + requestcontext.Now(r.Context()).UTC().Format("2006-01-02")

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename=`+filename+`.csv`)
		if err := h.service.ExportCSV(r.Context(), w); err != nil {
			h.logger.ErrorContext(r.Context(), "csv export failed", "error", err)
		}
	case "json":
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename=`+filename+`.json`)
		if err := h.service.ExportJSON(r.Context(), w); err != nil {
			h.logger.ErrorContext(r.Context(), "json export failed", "error", err)
		}
	default:
		httputil.WriteError(w, apierrors.New(apierrors.CodeValidation, "unsupported export format"))
	}
}

// Status is the public liveness snapshot.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	if !h.service.Healthy(r.Context()) {
		database = "unavailable"
	}
	httputil.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"status":      "online",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
		"version":     Version,
		"database":    database,
	})
}
