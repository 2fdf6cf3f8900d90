package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopifake/catalog/internal/service"
	"github.com/shopifake/catalog/pkg/httputil"
	"github.com/shopifake/catalog/pkg/validator"
)

// FilterHandler handles HTTP requests for filter definition endpoints.
type FilterHandler struct {
	service *service.FilterService
	logger  *slog.Logger
}

// NewFilterHandler creates a new filter HTTP handler.
func NewFilterHandler(svc *service.FilterService, logger *slog.Logger) *FilterHandler {
	return &FilterHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateFilterRequest is the JSON request body for creating a filter definition.
type CreateFilterRequest struct {
	SiteID      string   `json:"siteId" validate:"required,max=100"`
	CategoryID  string   `json:"categoryId" validate:"required,uuid"`
	Key         string   `json:"key" validate:"required,max=100"`
	Type        string   `json:"type" validate:"required"`
	DisplayName *string  `json:"displayName" validate:"omitempty,max=255"`
	Unit        *string  `json:"unit" validate:"omitempty,max=25"`
	Values      []string `json:"values" validate:"omitempty,dive,required,max=255"`
	MinValue    *float64 `json:"minValue"`
	MaxValue    *float64 `json:"maxValue"`
}

// CreateFilter handles POST /api/catalog/filters.
func (h *FilterHandler) CreateFilter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	filter, err := h.service.CreateFilter(r.Context(), &service.CreateFilterInput{
		SiteID:      req.SiteID,
		CategoryID:  req.CategoryID,
		Key:         req.Key,
		Type:        req.Type,
		DisplayName: req.DisplayName,
		Unit:        req.Unit,
		Values:      req.Values,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, filter)
}

// ListFilters handles GET /api/catalog/filters.
func (h *FilterHandler) ListFilters(w http.ResponseWriter, r *http.Request) {
	var siteID *string
	if v := r.URL.Query().Get("siteId"); v != "" {
		siteID = &v
	}

	filters, err := h.service.ListFilters(r.Context(), siteID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, filters)
}

// DeleteFilter handles DELETE /api/catalog/filters/{id}.
func (h *FilterHandler) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteFilter(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
