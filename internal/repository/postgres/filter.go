package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopifake/catalog/internal/domain"
	"github.com/shopifake/catalog/pkg/database"
	apperrors "github.com/shopifake/catalog/pkg/errors"
)

const filterColumns = `f.id, f.site_id, f.category_id, c.name, f.key, f.type,
	f.display_name, f.unit, f.allowed_values, f.min_value, f.max_value, f.created_at`

// FilterRepository implements filter-definition persistence using PostgreSQL.
type FilterRepository struct {
	db database.DBTX
}

// NewFilterRepository creates a PostgreSQL-backed filter repository.
func NewFilterRepository(db database.DBTX) *FilterRepository {
	return &FilterRepository{db: db}
}

// Create inserts a new filter definition.
func (r *FilterRepository) Create(ctx context.Context, f *domain.Filter) error {
	valuesJSON, err := json.Marshal(f.AllowedValues)
	if err != nil {
		return fmt.Errorf("marshal allowed values: %w", err)
	}

	query := `
		INSERT INTO filters (id, site_id, category_id, key, type, display_name,
			unit, allowed_values, min_value, max_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		f.ID,
		f.SiteID,
		f.CategoryID,
		f.Key,
		f.Type,
		f.DisplayName,
		f.Unit,
		valuesJSON,
		f.MinValue,
		f.MaxValue,
		f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Duplicate("filter", "key", f.Key)
		}
		return fmt.Errorf("insert filter: %w", err)
	}

	return nil
}

// GetByID retrieves a filter definition by its id.
func (r *FilterRepository) GetByID(ctx context.Context, id string) (*domain.Filter, error) {
	query := `
		SELECT ` + filterColumns + `
		FROM filters f
		JOIN categories c ON c.id = f.category_id
		WHERE f.id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get filter: %w", err)
	}
	defer rows.Close()

	filters, err := scanFilters(rows)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, apperrors.NotFound("filter", id)
	}
	return &filters[0], nil
}

// List returns filter definitions, optionally scoped to a site.
func (r *FilterRepository) List(ctx context.Context, siteID *string) ([]domain.Filter, error) {
	query := `
		SELECT ` + filterColumns + `
		FROM filters f
		JOIN categories c ON c.id = f.category_id`
	var args []any
	if siteID != nil {
		query += ` WHERE f.site_id = $1`
		args = append(args, *siteID)
	}
	query += ` ORDER BY f.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	return scanFilters(rows)
}

// ExistsByScopeAndKey reports whether a filter with the given key exists in
// {site, category}, compared case-insensitively.
func (r *FilterRepository) ExistsByScopeAndKey(ctx context.Context, siteID, categoryID, key string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM filters
			WHERE site_id = $1 AND category_id = $2 AND lower(key) = lower($3)
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, siteID, categoryID, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("check filter key: %w", err)
	}
	return exists, nil
}

// Delete removes a filter definition by id.
func (r *FilterRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM filters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("filter", id)
	}
	return nil
}

func scanFilters(rows pgx.Rows) ([]domain.Filter, error) {
	filters := []domain.Filter{}
	for rows.Next() {
		var (
			f          domain.Filter
			valuesJSON []byte
		)
		if err := rows.Scan(
			&f.ID,
			&f.SiteID,
			&f.CategoryID,
			&f.CategoryName,
			&f.Key,
			&f.Type,
			&f.DisplayName,
			&f.Unit,
			&valuesJSON,
			&f.MinValue,
			&f.MaxValue,
			&f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan filter row: %w", err)
		}

		if valuesJSON != nil {
			if err := json.Unmarshal(valuesJSON, &f.AllowedValues); err != nil {
				return nil, fmt.Errorf("unmarshal allowed values: %w", err)
			}
		}

		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filter rows: %w", err)
	}
	return filters, nil
}
