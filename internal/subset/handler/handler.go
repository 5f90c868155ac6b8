// Package handler is the thin HTTP layer over the subset service. It parses
// requests, delegates, and renders; no domain rule lives here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"subsets/internal/platform/middleware"
	"subsets/internal/subset/models"
	"subsets/internal/subset/service"
	dErrors "subsets/pkg/domain-errors"
	"subsets/pkg/platform/httputil"
)

// Service defines the interface for subset operations.
type Service interface {
	CreateSeries(ctx context.Context, series *models.Series) (*models.Series, error)
	UpdateSeries(ctx context.Context, id string, series *models.Series) (*models.Series, error)
	GetSeries(ctx context.Context, id, language string) (*models.Series, error)
	ListSeries(ctx context.Context) ([]*models.Series, error)

	CreateVersion(ctx context.Context, seriesID string, doc map[string]any) (*service.VersionResult, error)
	UpdateVersion(ctx context.Context, seriesID, versionID string, doc map[string]any) (*service.VersionResult, error)
	DeleteVersion(ctx context.Context, seriesID, versionID string) error
	GetVersion(ctx context.Context, seriesID, versionID, language string) (*models.Version, error)
	ListVersions(ctx context.Context, seriesID string, includeDrafts bool, language string) ([]*models.Version, error)

	CodesAt(ctx context.Context, seriesID string, date models.Date, language string) ([]models.SubsetCode, error)
	CodesInRange(ctx context.Context, seriesID string, from, to models.Date, language string) ([]models.SubsetCode, error)

	Schema(ctx context.Context) (*models.Definition, error)
	Health(ctx context.Context) error
}

// Handler handles the subset endpoints.
type Handler struct {
	logger  *slog.Logger
	subsets Service
}

// New creates a subset Handler.
func New(subsets Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, subsets: subsets}
}

// Register registers the subset routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	subsetRouter := chi.NewRouter()
	subsetRouter.Use(middleware.Recovery(h.logger))
	subsetRouter.Use(middleware.RequestID)
	subsetRouter.Use(middleware.Logger(h.logger))
	subsetRouter.Use(middleware.Timeout(30 * time.Second))
	subsetRouter.Use(middleware.ContentTypeJSON)

	subsetRouter.Get("/v1/health", h.handleHealth)
	subsetRouter.Get("/v1/subsets/schema", h.handleSchema)

	subsetRouter.Get("/v1/subsets", h.handleListSeries)
	subsetRouter.Post("/v1/subsets", h.handleCreateSeries)
	subsetRouter.Get("/v1/subsets/{id}", h.handleGetSeries)
	subsetRouter.Put("/v1/subsets/{id}", h.handleUpdateSeries)

	subsetRouter.Get("/v1/subsets/{id}/versions", h.handleListVersions)
	subsetRouter.Post("/v1/subsets/{id}/versions", h.handleCreateVersion)
	subsetRouter.Get("/v1/subsets/{id}/versions/{versionId}", h.handleGetVersion)
	subsetRouter.Put("/v1/subsets/{id}/versions/{versionId}", h.handleUpdateVersion)
	subsetRouter.Delete("/v1/subsets/{id}/versions/{versionId}", h.handleDeleteVersion)

	subsetRouter.Get("/v1/subsets/{id}/codes", h.handleCodes)
	subsetRouter.Get("/v1/subsets/{id}/codesAt", h.handleCodesAt)

	r.Mount("/", subsetRouter)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.subsets.Health(r.Context()); err != nil {
		h.logError(r, "health check failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	def, err := h.subsets.Schema(r.Context())
	if err != nil {
		h.logError(r, "failed to load schema", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, def)
}

func (h *Handler) handleListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.subsets.ListSeries(r.Context())
	if err != nil {
		h.logError(r, "failed to list series", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, series)
}

func (h *Handler) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	var series models.Series
	if err := json.NewDecoder(r.Body).Decode(&series); err != nil {
		h.logWarn(r, "invalid series body", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	created, err := h.subsets.CreateSeries(r.Context(), &series)
	if err != nil {
		h.logOutcome(r, "failed to create series", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.subsets.GetSeries(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("language"))
	if err != nil {
		h.logOutcome(r, "failed to get series", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, series)
}

func (h *Handler) handleUpdateSeries(w http.ResponseWriter, r *http.Request) {
	var series models.Series
	if err := json.NewDecoder(r.Body).Decode(&series); err != nil {
		h.logWarn(r, "invalid series body", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	updated, err := h.subsets.UpdateSeries(r.Context(), chi.URLParam(r, "id"), &series)
	if err != nil {
		h.logOutcome(r, "failed to update series", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleListVersions(w http.ResponseWriter, r *http.Request) {
	includeDrafts := r.URL.Query().Get("includeDrafts") == "true"
	versions, err := h.subsets.ListVersions(r.Context(), chi.URLParam(r, "id"), includeDrafts, r.URL.Query().Get("language"))
	if err != nil {
		h.logOutcome(r, "failed to list versions", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, versions)
}

func (h *Handler) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.logWarn(r, "invalid version body", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	result, err := h.subsets.CreateVersion(r.Context(), chi.URLParam(r, "id"), doc)
	if err != nil {
		h.logOutcome(r, "failed to create version", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.subsets.GetVersion(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "versionId"), r.URL.Query().Get("language"))
	if err != nil {
		h.logOutcome(r, "failed to get version", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, version)
}

func (h *Handler) handleUpdateVersion(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.logWarn(r, "invalid version body", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	result, err := h.subsets.UpdateVersion(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "versionId"), doc)
	if err != nil {
		h.logOutcome(r, "failed to update version", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	err := h.subsets.DeleteVersion(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "versionId"))
	if err != nil {
		h.logOutcome(r, "failed to delete version", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCodes serves both single-date (?date=) and range (?from=&to=) reads.
func (h *Handler) handleCodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	language := q.Get("language")
	seriesID := chi.URLParam(r, "id")

	if raw := q.Get("date"); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		codes, err := h.subsets.CodesAt(r.Context(), seriesID, date, language)
		if err != nil {
			h.logOutcome(r, "failed to get codes", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, codes)
		return
	}

	from, err := models.ParseDate(q.Get("from"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	to, err := models.ParseDate(q.Get("to"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	codes, err := h.subsets.CodesInRange(r.Context(), seriesID, from, to, language)
	if err != nil {
		h.logOutcome(r, "failed to get codes", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, codes)
}

func (h *Handler) handleCodesAt(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if date.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "date query parameter is required"))
		return
	}
	codes, err := h.subsets.CodesAt(r.Context(), chi.URLParam(r, "id"), date, r.URL.Query().Get("language"))
	if err != nil {
		h.logOutcome(r, "failed to get codes", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, codes)
}

func (h *Handler) logWarn(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	)
}

// logOutcome logs client-caused failures at WARN and everything else at ERROR.
func (h *Handler) logOutcome(r *http.Request, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUpstream:
		h.logError(r, msg, err)
	default:
		h.logWarn(r, msg, err)
	}
}
