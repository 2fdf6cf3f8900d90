package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shopifake/catalog/internal/domain"
	"github.com/shopifake/catalog/pkg/database"
	apperrors "github.com/shopifake/catalog/pkg/errors"
)

const categoryColumns = `id, site_id, name, created_at`

// CategoryRepository implements category persistence using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, site_id, name, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, c.ID, c.SiteID, c.Name, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Duplicate("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its id.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var c domain.Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.SiteID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// GetByIDs batch-loads categories for the given ids.
func (r *CategoryRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Category, error) {
	if len(ids) == 0 {
		return []domain.Category{}, nil
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ANY($1) ORDER BY name`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("batch load categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// List returns categories, optionally scoped to a site.
func (r *CategoryRepository) List(ctx context.Context, siteID *string) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if siteID != nil {
		query += ` WHERE site_id = $1`
		args = append(args, *siteID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// ExistsBySiteAndName reports whether a site already has a category with the
// given name, compared case-insensitively.
func (r *CategoryRepository) ExistsBySiteAndName(ctx context.Context, siteID, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE site_id = $1 AND lower(name) = lower($2))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, siteID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

// Delete removes a category by id.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}
	return nil
}

func scanCategories(rows pgx.Rows) ([]domain.Category, error) {
	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.SiteID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
