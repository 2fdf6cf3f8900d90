package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopifake/catalog/internal/domain"
	"github.com/shopifake/catalog/internal/repository"
	apperrors "github.com/shopifake/catalog/pkg/errors"
)

// ProductService implements the business logic for catalog products: SKU
// uniqueness, image validation, category scoping, publish lifecycle, and
// filter-value assignment validation.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	filters    repository.FilterRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewProductService creates a new product service.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	filters repository.FilterRepository,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		filters:    filters,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// FilterAssignmentInput is one requested filter-value assignment.
type FilterAssignmentInput struct {
	FilterID     string
	TextValue    *string
	NumericValue *float64
	MinValue     *float64
	MaxValue     *float64
	StartAt      *time.Time
	EndAt        *time.Time
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	SiteID             string
	Name               string
	Description        string
	Images             []string
	CategoryIDs        []string
	SKU                string
	Status             string
	ScheduledPublishAt *time.Time
	Filters            []FilterAssignmentInput
}

// UpdateProductInput holds the parameters for a partial product update. Nil
// fields are left untouched; filter assignments, when present, replace the
// existing set wholesale.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Images      []string
	CategoryIDs []string
	SKU         *string
	Filters     []FilterAssignmentInput
}

// UpdateStatusInput holds the parameters for a status transition.
type UpdateStatusInput struct {
	Status             string
	ScheduledPublishAt *time.Time
}

// CreateProduct creates a new product aggregate after running the full
// validation pass: SKU uniqueness, image URLs, category resolution, filter
// assignments, and the publish schedule.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if err := s.validateSKUUniqueness(ctx, input.SKU, ""); err != nil {
		return nil, err
	}
	if len(input.Images) == 0 {
		return nil, apperrors.Validation("at least one image is required")
	}
	if err := validateImages(input.Images); err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(ctx, input.SiteID, input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	filterValues, err := s.mapFilterValues(ctx, input.SiteID, input.Filters)
	if err != nil {
		return nil, err
	}

	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	scheduledAt, err := s.validateSchedule(status, input.ScheduledPublishAt)
	if err != nil {
		return nil, err
	}

	now := s.now()
	product := &domain.Product{
		ID:                 uuid.New().String(),
		SiteID:             input.SiteID,
		Name:               strings.TrimSpace(input.Name),
		Description:        strings.TrimSpace(input.Description),
		Images:             append([]string{}, input.Images...),
		Categories:         categories,
		SKU:                strings.ToUpper(input.SKU),
		Status:             status,
		ScheduledPublishAt: scheduledAt,
		CreatedAt:          now,
		UpdatedAt:          now,
		Filters:            filterValues,
	}
	if status == domain.StatusPublished {
		product.PublishedAt = &now
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("site_id", product.SiteID),
		slog.String("sku", product.SKU),
		slog.String("status", string(product.Status)),
	)

	return product, nil
}

// UpdateProduct applies a partial update to an existing product. Each present
// field runs the same validation as creation.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		product.Name = strings.TrimSpace(*input.Name)
	}

	if input.Description != nil {
		product.Description = *input.Description
	}

	if input.Images != nil {
		if len(input.Images) == 0 {
			return nil, apperrors.Validation("images list cannot be empty")
		}
		if err := validateImages(input.Images); err != nil {
			return nil, err
		}
		product.Images = append([]string{}, input.Images...)
	}

	if input.CategoryIDs != nil {
		if len(input.CategoryIDs) == 0 {
			return nil, apperrors.Validation("categoryIds cannot be empty")
		}
		categories, err := s.resolveCategories(ctx, product.SiteID, input.CategoryIDs)
		if err != nil {
			return nil, err
		}
		product.Categories = categories
	}

	if input.SKU != nil && strings.TrimSpace(*input.SKU) != "" {
		if err := s.validateSKUUniqueness(ctx, *input.SKU, product.ID); err != nil {
			return nil, err
		}
		product.SKU = strings.ToUpper(*input.SKU)
	}

	if input.Filters != nil {
		filterValues, err := s.mapFilterValues(ctx, product.SiteID, input.Filters)
		if err != nil {
			return nil, err
		}
		product.Filters = filterValues
	}

	product.UpdatedAt = s.now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.String("sku", product.SKU),
	)

	return product, nil
}

// UpdateStatus transitions a product's publish lifecycle state and applies
// the transition side effects on the timestamps.
func (s *ProductService) UpdateStatus(ctx context.Context, id string, input *UpdateStatusInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for status update: %w", err)
	}

	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	scheduledAt, err := s.validateSchedule(status, input.ScheduledPublishAt)
	if err != nil {
		return nil, err
	}

	product.Status = status
	switch status {
	case domain.StatusPublished:
		now := s.now()
		product.ScheduledPublishAt = nil
		product.PublishedAt = &now
	case domain.StatusScheduled:
		product.ScheduledPublishAt = scheduledAt
		product.PublishedAt = nil
	default:
		product.ScheduledPublishAt = nil
		product.PublishedAt = nil
	}
	product.UpdatedAt = s.now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product status: %w", err)
	}

	s.logger.InfoContext(ctx, "product status updated",
		slog.String("product_id", product.ID),
		slog.String("status", string(product.Status)),
	)

	return product, nil
}

// GetProduct retrieves a product aggregate by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns products optionally filtered by site and status.
func (s *ProductService) ListProducts(ctx context.Context, siteID, status *string) ([]domain.Product, error) {
	query := repository.ProductQuery{SiteID: siteID}
	if status != nil {
		parsed, err := domain.ParseStatus(*status)
		if err != nil {
			return nil, err
		}
		query.Status = &parsed
	}

	products, err := s.products.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListPublishedProducts returns the public storefront listing: published
// products only, optionally scoped to a site.
func (s *ProductService) ListPublishedProducts(ctx context.Context, siteID *string) ([]domain.Product, error) {
	published := domain.StatusPublished
	products, err := s.products.List(ctx, repository.ProductQuery{SiteID: siteID, Status: &published})
	if err != nil {
		return nil, fmt.Errorf("list published products: %w", err)
	}
	return products, nil
}

// DeleteProduct removes a product unconditionally by id.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// validateSKUUniqueness rejects a SKU already carried by another product.
// SKUs compare case-insensitively; currentID excludes the product itself on
// update.
func (s *ProductService) validateSKUUniqueness(ctx context.Context, sku, currentID string) error {
	existing, err := s.products.FindBySKU(ctx, strings.ToUpper(sku))
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if existing != nil && existing.ID != currentID {
		return apperrors.Duplicate("product", "sku", sku)
	}
	return nil
}

// validateImages checks that every image URL is non-blank, parseable, and
// uses an http or https scheme.
func validateImages(images []string) error {
	for _, image := range images {
		if strings.TrimSpace(image) == "" {
			return apperrors.Validation("image URL cannot be blank")
		}
		u, err := url.Parse(image)
		if err != nil {
			return apperrors.Validationf("invalid image URL: %s", image)
		}
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return apperrors.Validationf("image URL must be http or https: %s", image)
		}
	}
	return nil
}

// resolveCategories loads the referenced categories, collapsing duplicate
// ids, and checks that every one belongs to the product's site.
func (s *ProductService) resolveCategories(ctx context.Context, siteID string, categoryIDs []string) ([]domain.Category, error) {
	if len(categoryIDs) == 0 {
		return nil, apperrors.Validation("categoryIds are required")
	}

	unique := make([]string, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}

	categories, err := s.categories.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	if len(categories) != len(unique) {
		return nil, apperrors.Validation("one or more categories do not exist")
	}
	for _, c := range categories {
		if c.SiteID != siteID {
			return nil, apperrors.Validation("categories must belong to the same site as the product")
		}
	}

	return categories, nil
}

// mapFilterValues resolves and validates the requested filter assignments
// against their definitions and denormalizes the definition fields used in
// responses.
func (s *ProductService) mapFilterValues(ctx context.Context, siteID string, assignments []FilterAssignmentInput) ([]domain.FilterValue, error) {
	values := make([]domain.FilterValue, 0, len(assignments))
	for _, a := range assignments {
		filter, err := s.filters.GetByID(ctx, a.FilterID)
		if err != nil {
			return nil, fmt.Errorf("resolve filter: %w", err)
		}
		if filter.SiteID != siteID {
			return nil, apperrors.Validationf("filter %s does not belong to site %s", filter.Key, siteID)
		}

		if err := validateAssignment(&a, filter); err != nil {
			return nil, err
		}

		values = append(values, domain.FilterValue{
			FilterID:     filter.ID,
			Key:          filter.Key,
			Type:         filter.Type,
			DisplayName:  filter.DisplayName,
			Unit:         filter.Unit,
			TextValue:    a.TextValue,
			NumericValue: a.NumericValue,
			MinValue:     a.MinValue,
			MaxValue:     a.MaxValue,
			StartAt:      a.StartAt,
			EndAt:        a.EndAt,
		})
	}
	return values, nil
}

// validateAssignment checks one requested assignment against its filter
// definition: the value shape must match the definition's type, and the value
// must satisfy the declared domain (allowed values, numeric bounds, date
// ordering).
func validateAssignment(a *FilterAssignmentInput, filter *domain.Filter) error {
	label := "filter " + filter.Key

	switch filter.Type {
	case domain.FilterTypeCategorical:
		if !hasText(a.TextValue) {
			return apperrors.Validationf("textValue is required for %s", label)
		}
		if len(filter.AllowedValues) > 0 && !slices.Contains(filter.AllowedValues, *a.TextValue) {
			return apperrors.Validationf("textValue must match one of the allowed values for %s", label)
		}
		if err := ensureAbsent(a.NumericValue != nil, "numericValue", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.MinValue != nil, "minValue", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.MaxValue != nil, "maxValue", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.StartAt != nil, "startAt", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.EndAt != nil, "endAt", label); err != nil {
			return err
		}

	case domain.FilterTypeQuantitative:
		if hasText(a.TextValue) {
			return apperrors.Validationf("textValue is not allowed for %s", label)
		}
		if a.NumericValue == nil && (a.MinValue == nil || a.MaxValue == nil) {
			return apperrors.Validationf("provide numericValue or min/max range for %s", label)
		}
		if a.MinValue != nil && a.MaxValue != nil && *a.MaxValue < *a.MinValue {
			return apperrors.Validation("maxValue must be greater than or equal to minValue")
		}
		if err := validateAgainstBounds(a, filter, label); err != nil {
			return err
		}
		if err := ensureAbsent(a.StartAt != nil, "startAt", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.EndAt != nil, "endAt", label); err != nil {
			return err
		}

	case domain.FilterTypeDatetime:
		if a.StartAt == nil {
			return apperrors.Validationf("startAt is required for %s", label)
		}
		if a.EndAt != nil && a.EndAt.Before(*a.StartAt) {
			return apperrors.Validationf("endAt must be after startAt for %s", label)
		}
		if err := ensureAbsent(a.TextValue != nil, "textValue", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.NumericValue != nil, "numericValue", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.MinValue != nil, "minValue", label); err != nil {
			return err
		}
		if err := ensureAbsent(a.MaxValue != nil, "maxValue", label); err != nil {
			return err
		}

	default:
		return apperrors.Validationf("unsupported filter type %s", filter.Type)
	}

	return nil
}

// validateAgainstBounds checks a quantitative assignment against the bounds
// declared on the filter definition, on each side that is set.
func validateAgainstBounds(a *FilterAssignmentInput, filter *domain.Filter, label string) error {
	if filter.MinValue != nil {
		if a.NumericValue != nil && *a.NumericValue < *filter.MinValue {
			return apperrors.Validationf("numericValue must be >= %v for %s", *filter.MinValue, label)
		}
		if a.MinValue != nil && *a.MinValue < *filter.MinValue {
			return apperrors.Validationf("minValue must be >= %v for %s", *filter.MinValue, label)
		}
	}
	if filter.MaxValue != nil {
		if a.NumericValue != nil && *a.NumericValue > *filter.MaxValue {
			return apperrors.Validationf("numericValue must be <= %v for %s", *filter.MaxValue, label)
		}
		if a.MaxValue != nil && *a.MaxValue > *filter.MaxValue {
			return apperrors.Validationf("maxValue must be <= %v for %s", *filter.MaxValue, label)
		}
	}
	return nil
}

// ensureAbsent rejects a field that is not supported for the filter's type.
func ensureAbsent(present bool, field, label string) error {
	if present {
		return apperrors.Validationf("%s is not supported for %s", field, label)
	}
	return nil
}

// validateSchedule enforces the scheduledPublishAt rules: required and
// strictly in the future for SCHEDULED, absent for any other status.
func (s *ProductService) validateSchedule(status domain.Status, requested *time.Time) (*time.Time, error) {
	if status == domain.StatusScheduled {
		if requested == nil {
			return nil, apperrors.Validation("scheduledPublishAt is required for scheduled products")
		}
		if !requested.After(s.now()) {
			return nil, apperrors.Validation("scheduledPublishAt must be in the future")
		}
		return requested, nil
	}
	if requested != nil {
		return nil, apperrors.Validation("scheduledPublishAt is only allowed for scheduled products")
	}
	return nil, nil
}
