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

// CategoryService implements the business logic for catalog categories.
type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	logger     *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	SiteID string
	Name   string
}

// CreateCategory creates a category for a site. Names are unique within a
// site, compared case-insensitively.
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*domain.Category, error) {
	exists, err := s.categories.ExistsBySiteAndName(ctx, input.SiteID, input.Name)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, apperrors.Duplicate("category", "name", input.Name)
	}

	category := &domain.Category{
		ID:        uuid.New().String(),
		SiteID:    input.SiteID,
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("site_id", category.SiteID),
	)

	return category, nil
}

// ListCategories returns categories, optionally scoped to a site.
func (s *CategoryService) ListCategories(ctx context.Context, siteID *string) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category unless any product still references it.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get category for delete: %w", err)
	}

	inUse, err := s.products.ExistsByCategoryID(ctx, id)
	if err != nil {
		return fmt.Errorf("check category links: %w", err)
	}
	if inUse {
		return apperrors.Conflict("category is linked to products and cannot be deleted")
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}
