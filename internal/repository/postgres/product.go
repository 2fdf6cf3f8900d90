package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopifake/catalog/internal/domain"
	"github.com/shopifake/catalog/internal/repository"
	"github.com/shopifake/catalog/pkg/database"
	apperrors "github.com/shopifake/catalog/pkg/errors"
)

const productColumns = `id, site_id, name, description, images, sku, status,
	scheduled_publish_at, published_at, created_at, updated_at`

// ProductRepository implements product-aggregate persistence using
// PostgreSQL. Category links and filter-value assignments are written
// together with the product row inside one transaction.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product aggregate.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create product: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO products (id, site_id, name, description, images, sku, status,
			scheduled_publish_at, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(ctx, query,
		p.ID,
		p.SiteID,
		p.Name,
		p.Description,
		imagesJSON,
		p.SKU,
		p.Status,
		p.ScheduledPublishAt,
		p.PublishedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Duplicate("product", "sku", p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	if err := insertCategoryLinks(ctx, tx, p); err != nil {
		return err
	}
	if err := insertFilterValues(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create product: %w", err)
	}
	return nil
}

// Update rewrites a product aggregate, replacing category links and filter
// assignments wholesale.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update product: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE products
		SET name = $1, description = $2, images = $3, sku = $4, status = $5,
		    scheduled_publish_at = $6, published_at = $7, updated_at = $8
		WHERE id = $9`

	ct, err := tx.Exec(ctx, query,
		p.Name,
		p.Description,
		imagesJSON,
		p.SKU,
		p.Status,
		p.ScheduledPublishAt,
		p.PublishedAt,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Duplicate("product", "sku", p.SKU)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear category links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_filters WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear filter values: %w", err)
	}

	if err := insertCategoryLinks(ctx, tx, p); err != nil {
		return err
	}
	if err := insertFilterValues(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update product: %w", err)
	}
	return nil
}

// GetByID loads a product aggregate by id, including resolved categories and
// enriched filter values.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := r.scanProduct(ctx, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, err
	}

	if err := r.attachAssociations(ctx, []*domain.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// FindBySKU looks a product up by its uppercased SKU. Only the product row is
// loaded; associations are not needed for uniqueness checks. Returns
// (nil, nil) when no product carries the SKU.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE upper(sku) = upper($1)`

	p, err := r.scanProduct(ctx, query, sku)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List returns product aggregates matching the query.
func (r *ProductRepository) List(ctx context.Context, q repository.ProductQuery) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var (
		conditions []string
		args       []any
	)
	if q.SiteID != nil {
		args = append(args, *q.SiteID)
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", len(args)))
	}
	if q.Status != nil {
		args = append(args, *q.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	refs := make([]*domain.Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := r.attachAssociations(ctx, refs); err != nil {
		return nil, err
	}

	return products, nil
}

// Delete removes a product by id. Link rows are removed by ON DELETE CASCADE.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// ExistsByCategoryID reports whether any product links the category.
func (r *ProductRepository) ExistsByCategoryID(ctx context.Context, categoryID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM product_categories WHERE category_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, categoryID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category links: %w", err)
	}
	return exists, nil
}

// ExistsByFilterID reports whether any product assignment references the filter.
func (r *ProductRepository) ExistsByFilterID(ctx context.Context, filterID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM product_filters WHERE filter_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, filterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check filter links: %w", err)
	}
	return exists, nil
}

func insertCategoryLinks(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	for _, categoryID := range p.CategoryIDs() {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)`,
			p.ID, categoryID,
		)
		if err != nil {
			return fmt.Errorf("link category %s: %w", categoryID, err)
		}
	}
	return nil
}

func insertFilterValues(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	for _, fv := range p.Filters {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_filters (product_id, filter_id, text_value,
				numeric_value, min_value, max_value, start_at, end_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, fv.FilterID, fv.TextValue, fv.NumericValue,
			fv.MinValue, fv.MaxValue, fv.StartAt, fv.EndAt,
		)
		if err != nil {
			return fmt.Errorf("assign filter %s: %w", fv.FilterID, err)
		}
	}
	return nil
}

// attachAssociations batch-loads category links and filter values for the
// given products. Two queries total, regardless of product count.
func (r *ProductRepository) attachAssociations(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	byID := make(map[string]*domain.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Categories = []domain.Category{}
		p.Filters = []domain.FilterValue{}
	}

	catQuery := `
		SELECT pc.product_id, c.id, c.site_id, c.name, c.created_at
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.name`

	rows, err := r.db.Query(ctx, catQuery, ids)
	if err != nil {
		return fmt.Errorf("load product categories: %w", err)
	}
	for rows.Next() {
		var (
			productID string
			c         domain.Category
		)
		if err := rows.Scan(&productID, &c.ID, &c.SiteID, &c.Name, &c.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan product category row: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product category rows: %w", err)
	}

	fvQuery := `
		SELECT pf.product_id, pf.filter_id, f.key, f.type, f.display_name, f.unit,
			pf.text_value, pf.numeric_value, pf.min_value, pf.max_value,
			pf.start_at, pf.end_at
		FROM product_filters pf
		JOIN filters f ON f.id = pf.filter_id
		WHERE pf.product_id = ANY($1)
		ORDER BY f.key`

	rows, err = r.db.Query(ctx, fvQuery, ids)
	if err != nil {
		return fmt.Errorf("load product filter values: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			productID string
			fv        domain.FilterValue
		)
		if err := rows.Scan(&productID, &fv.FilterID, &fv.Key, &fv.Type,
			&fv.DisplayName, &fv.Unit, &fv.TextValue, &fv.NumericValue,
			&fv.MinValue, &fv.MaxValue, &fv.StartAt, &fv.EndAt); err != nil {
			return fmt.Errorf("scan product filter row: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Filters = append(p.Filters, fv)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product filter rows: %w", err)
	}

	return nil
}

// scanProduct executes a query expected to return a single product row.
// Associations are not loaded.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query product: %w", err)
		}
		return nil, pgx.ErrNoRows
	}
	return scanProductRow(rows)
}

func scanProductRow(rows pgx.Rows) (*domain.Product, error) {
	var (
		p          domain.Product
		imagesJSON []byte
	)
	if err := rows.Scan(
		&p.ID,
		&p.SiteID,
		&p.Name,
		&p.Description,
		&imagesJSON,
		&p.SKU,
		&p.Status,
		&p.ScheduledPublishAt,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan product row: %w", err)
	}

	if imagesJSON != nil {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}

	return &p, nil
}
