package repository

import (
	"context"

	"github.com/shopifake/catalog/internal/domain"
)

// ProductQuery defines the optional filters for listing products.
type ProductQuery struct {
	SiteID *string
	Status *domain.Status
}

// ProductRepository defines persistence operations for product aggregates.
// Mutations cover the whole aggregate: category links and filter-value
// assignments are written together with the product row in one transaction.
type ProductRepository interface {
	// Create inserts a new product aggregate.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID loads a product aggregate by id, including resolved categories
	// and enriched filter values. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// FindBySKU looks a product up by its uppercased SKU. Returns (nil, nil)
	// when no product carries the SKU.
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)

	// List returns product aggregates matching the query.
	List(ctx context.Context, query ProductQuery) ([]domain.Product, error)

	// Update rewrites a product aggregate, replacing category links and
	// filter assignments wholesale.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by id. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// ExistsByCategoryID reports whether any product links the category.
	ExistsByCategoryID(ctx context.Context, categoryID string) (bool, error)

	// ExistsByFilterID reports whether any product assignment references the filter.
	ExistsByFilterID(ctx context.Context, filterID string) (bool, error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	// Create inserts a new category.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID loads a category by id. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// GetByIDs batch-loads categories for the given ids. Missing ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Category, error)

	// List returns all categories, or those of a site when siteID is set.
	List(ctx context.Context, siteID *string) ([]domain.Category, error)

	// ExistsBySiteAndName reports whether the site already has a category
	// with the given name, compared case-insensitively.
	ExistsBySiteAndName(ctx context.Context, siteID, name string) (bool, error)

	// Delete removes a category by id. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// FilterRepository defines persistence operations for filter definitions.
type FilterRepository interface {
	// Create inserts a new filter definition.
	Create(ctx context.Context, filter *domain.Filter) error

	// GetByID loads a filter definition by id. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*domain.Filter, error)

	// List returns all filter definitions, or those of a site when siteID is
	// set, with category names resolved.
	List(ctx context.Context, siteID *string) ([]domain.Filter, error)

	// ExistsByScopeAndKey reports whether a filter with the given key exists
	// within {site, category}, compared case-insensitively.
	ExistsByScopeAndKey(ctx context.Context, siteID, categoryID, key string) (bool, error)

	// Delete removes a filter definition by id. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}
