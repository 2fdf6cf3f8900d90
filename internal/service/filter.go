package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopifake/catalog/internal/domain"
	"github.com/shopifake/catalog/internal/repository"
	apperrors "github.com/shopifake/catalog/pkg/errors"
)

// FilterService implements the business logic for filter definitions.
type FilterService struct {
	filters    repository.FilterRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	logger     *slog.Logger
}

// NewFilterService creates a new filter service.
func NewFilterService(
	filters repository.FilterRepository,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	logger *slog.Logger,
) *FilterService {
	return &FilterService{
		filters:    filters,
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

// CreateFilterInput holds the parameters for creating a filter definition.
type CreateFilterInput struct {
	SiteID      string
	CategoryID  string
	Key         string
	Type        string
	DisplayName *string
	Unit        *string
	Values      []string
	MinValue    *float64
	MaxValue    *float64
}

// CreateFilter creates a filter definition scoped to a site and category.
// The referenced category must exist and belong to the same site, the key
// must be unique within the scope, and the value shape must match the type.
func (s *FilterService) CreateFilter(ctx context.Context, input *CreateFilterInput) (*domain.Filter, error) {
	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve filter category: %w", err)
	}
	if category.SiteID != input.SiteID {
		return nil, apperrors.Validationf("category %s does not belong to site %s", category.ID, input.SiteID)
	}

	exists, err := s.filters.ExistsByScopeAndKey(ctx, input.SiteID, category.ID, input.Key)
	if err != nil {
		return nil, fmt.Errorf("check filter key: %w", err)
	}
	if exists {
		return nil, apperrors.Duplicate("filter", "key", input.Key)
	}

	filterType := domain.FilterType(strings.ToUpper(strings.TrimSpace(input.Type)))
	if err := validateFilterShape(filterType, input); err != nil {
		return nil, err
	}

	filter := &domain.Filter{
		ID:            uuid.New().String(),
		SiteID:        input.SiteID,
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		Key:           strings.TrimSpace(input.Key),
		Type:          filterType,
		DisplayName:   trimmed(input.DisplayName),
		Unit:          trimmed(input.Unit),
		AllowedValues: append([]string{}, input.Values...),
		MinValue:      input.MinValue,
		MaxValue:      input.MaxValue,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.filters.Create(ctx, filter); err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}

	s.logger.InfoContext(ctx, "filter created",
		slog.String("filter_id", filter.ID),
		slog.String("site_id", filter.SiteID),
		slog.String("key", filter.Key),
		slog.String("type", string(filter.Type)),
	)

	return filter, nil
}

// ListFilters returns filter definitions, optionally scoped to a site.
func (s *FilterService) ListFilters(ctx context.Context, siteID *string) ([]domain.Filter, error) {
	filters, err := s.filters.List(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return filters, nil
}

// DeleteFilter removes a filter definition unless any product assignment
// still references it.
func (s *FilterService) DeleteFilter(ctx context.Context, id string) error {
	if _, err := s.filters.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get filter for delete: %w", err)
	}

	inUse, err := s.products.ExistsByFilterID(ctx, id)
	if err != nil {
		return fmt.Errorf("check filter links: %w", err)
	}
	if inUse {
		return apperrors.Conflict("filter is linked to products and cannot be deleted")
	}

	if err := s.filters.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}

	s.logger.InfoContext(ctx, "filter deleted",
		slog.String("filter_id", id),
	)

	return nil
}

// validateFilterShape enforces the per-type shape constraints of a filter
// definition at creation time.
func validateFilterShape(filterType domain.FilterType, input *CreateFilterInput) error {
	if !domain.IsValidFilterType(filterType) {
		return apperrors.Validationf("unsupported filter type: %s", input.Type)
	}

	switch filterType {
	case domain.FilterTypeCategorical:
		if len(input.Values) == 0 {
			return apperrors.Validation("values are required for categorical filters")
		}
		if hasText(input.Unit) {
			return apperrors.Validation("unit is not allowed for categorical filters")
		}
		if input.MinValue != nil || input.MaxValue != nil {
			return apperrors.Validation("min/max values are not supported for categorical filters")
		}
	case domain.FilterTypeQuantitative:
		if !hasText(input.Unit) {
			return apperrors.Validation("unit is required for quantitative filters")
		}
		if len(input.Values) > 0 {
			return apperrors.Validation("values are not allowed for quantitative filters")
		}
		if input.MinValue != nil && input.MaxValue != nil && *input.MaxValue < *input.MinValue {
			return apperrors.Validation("maxValue must be greater than or equal to minValue")
		}
	case domain.FilterTypeDatetime:
		if hasText(input.Unit) {
			return apperrors.Validation("unit is not allowed for datetime filters")
		}
		if len(input.Values) > 0 {
			return apperrors.Validation("values are not allowed for datetime filters")
		}
		if input.MinValue != nil || input.MaxValue != nil {
			return apperrors.Validation("min/max values are not supported for datetime filters")
		}
	}
	return nil
}

// hasText reports whether the pointer holds a non-blank string.
func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// trimmed returns a pointer to the trimmed string, or nil when blank.
func trimmed(s *string) *string {
	if !hasText(s) {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
