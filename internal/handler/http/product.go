package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopifake/catalog/internal/domain"
	"github.com/shopifake/catalog/internal/service"
	"github.com/shopifake/catalog/pkg/httputil"
	"github.com/shopifake/catalog/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// FilterAssignmentRequest is one filter-value binding inside a product payload.
type FilterAssignmentRequest struct {
	FilterID     string     `json:"filterId" validate:"required,uuid"`
	TextValue    *string    `json:"textValue" validate:"omitempty,max=255"`
	NumericValue *float64   `json:"numericValue"`
	MinValue     *float64   `json:"minValue"`
	MaxValue     *float64   `json:"maxValue"`
	StartAt      *time.Time `json:"startAt"`
	EndAt        *time.Time `json:"endAt"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	SiteID             string                    `json:"siteId" validate:"required,max=100"`
	Name               string                    `json:"name" validate:"required,max=255"`
	Description        string                    `json:"description" validate:"required"`
	Images             []string                  `json:"images" validate:"required,min=1,dive,required,max=2048"`
	CategoryIDs        []string                  `json:"categoryIds" validate:"required,min=1,dive,uuid"`
	SKU                string                    `json:"sku" validate:"required,max=20,sku"`
	Status             string                    `json:"status"`
	ScheduledPublishAt *time.Time                `json:"scheduledPublishAt"`
	Filters            []FilterAssignmentRequest `json:"filters" validate:"omitempty,dive"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
// Absent fields are left untouched; a filters array replaces the assignment
// set wholesale.
type UpdateProductRequest struct {
	Name        *string                   `json:"name" validate:"omitempty,max=255"`
	Description *string                   `json:"description"`
	Images      []string                  `json:"images" validate:"omitempty,dive,required,max=2048"`
	CategoryIDs []string                  `json:"categoryIds" validate:"omitempty,dive,uuid"`
	SKU         *string                   `json:"sku" validate:"omitempty,max=20,sku"`
	Filters     []FilterAssignmentRequest `json:"filters" validate:"omitempty,dive"`
}

// UpdateStatusRequest is the JSON request body for a status transition.
type UpdateStatusRequest struct {
	Status             string     `json:"status" validate:"required"`
	ScheduledPublishAt *time.Time `json:"scheduledPublishAt"`
}

func toAssignmentInputs(reqs []FilterAssignmentRequest) []service.FilterAssignmentInput {
	if reqs == nil {
		return nil
	}
	inputs := make([]service.FilterAssignmentInput, 0, len(reqs))
	for _, a := range reqs {
		inputs = append(inputs, service.FilterAssignmentInput{
			FilterID:     a.FilterID,
			TextValue:    a.TextValue,
			NumericValue: a.NumericValue,
			MinValue:     a.MinValue,
			MaxValue:     a.MaxValue,
			StartAt:      a.StartAt,
			EndAt:        a.EndAt,
		})
	}
	return inputs
}

// --- Handlers ---

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if req.Status == "" {
		req.Status = string(domain.StatusDraft)
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		SiteID:             req.SiteID,
		Name:               req.Name,
		Description:        req.Description,
		Images:             req.Images,
		CategoryIDs:        req.CategoryIDs,
		SKU:                req.SKU,
		Status:             req.Status,
		ScheduledPublishAt: req.ScheduledPublishAt,
		Filters:            toAssignmentInputs(req.Filters),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, product)
}

// GetProduct handles GET /products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var siteID, status *string
	if v := r.URL.Query().Get("siteId"); v != "" {
		siteID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	products, err := h.service.ListProducts(r.Context(), siteID, status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, products)
}

// ListPublishedProducts handles GET /products/public.
func (h *ProductHandler) ListPublishedProducts(w http.ResponseWriter, r *http.Request) {
	var siteID *string
	if v := r.URL.Query().Get("siteId"); v != "" {
		siteID = &v
	}

	products, err := h.service.ListPublishedProducts(r.Context(), siteID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, products)
}

// UpdateProduct handles PATCH /products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id.String(), &service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		CategoryIDs: req.CategoryIDs,
		SKU:         req.SKU,
		Filters:     toAssignmentInputs(req.Filters),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// UpdateStatus handles PATCH /products/{id}/status.
func (h *ProductHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	product, err := h.service.UpdateStatus(r.Context(), id.String(), &service.UpdateStatusInput{
		Status:             req.Status,
		ScheduledPublishAt: req.ScheduledPublishAt,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
