package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"furnistore/internal/domain"

	"github.com/sirupsen/logrus"
)

// legacyCatalogRepository serves catalog reads from the embedded database
// file left behind by the old storefront. It is strictly read-only; all
// writes go to the primary store.
type legacyCatalogRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewLegacyCatalogRepository(db *sql.DB, logger *logrus.Logger) domain.CatalogReader {
	return &legacyCatalogRepository{
		db:  db,
		log: logger,
	}
}

func (r *legacyCatalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	query := `
        SELECT p.id, p.slug, p.name, p.description, p.price, p.original_price, p.discount_percent,
               p.stock, p.is_featured, p.is_new, p.is_on_sale, p.category_id
        FROM products p`
	conditions := []string{}
	args := []interface{}{}

	if filter.CategorySlug != "" {
		query += ` JOIN categories c ON c.id = p.category_id`
		conditions = append(conditions, "c.slug = ?")
		args = append(args, filter.CategorySlug)
	}
	if filter.Featured != nil {
		conditions = append(conditions, "p.is_featured = ?")
		args = append(args, *filter.Featured)
	}
	if filter.New != nil {
		conditions = append(conditions, "p.is_new = ?")
		args = append(args, *filter.New)
	}
	if filter.OnSale != nil {
		conditions = append(conditions, "p.is_on_sale = ?")
		args = append(args, *filter.OnSale)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Legacy catalog: failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products from legacy catalog: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := scanLegacyProduct(rows, &product); err != nil {
			r.log.Errorf("Legacy catalog: failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning legacy product data: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legacy products: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (r *legacyCatalogRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `
        SELECT id, slug, name, description, price, original_price, discount_percent,
               stock, is_featured, is_new, is_on_sale, category_id
        FROM products
        WHERE slug = ?
    `
	product := &domain.Product{}
	err := scanLegacyProduct(r.db.QueryRowContext(ctx, query, slug), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Legacy catalog: product with slug '%s' not found", slug)
			return nil, fmt.Errorf("product with slug '%s': %w", slug, domain.ErrNotFound)
		}
		r.log.Errorf("Legacy catalog: failed to get product by slug '%s': %v", slug, err)
		return nil, fmt.Errorf("could not get product from legacy catalog: %w", err)
	}

	return product, nil
}

func (r *legacyCatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, slug, name FROM categories ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Legacy catalog: failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories from legacy catalog: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning legacy category: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legacy categories: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// The legacy file predates the image gallery and timestamps, so only the
// core columns are read.
func scanLegacyProduct(row orderScanner, product *domain.Product) error {
	var categoryID sql.NullInt64

	err := row.Scan(
		&product.ID,
		&product.Slug,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.OriginalPrice,
		&product.DiscountPercent,
		&product.Stock,
		&product.IsFeatured,
		&product.IsNew,
		&product.IsOnSale,
		&categoryID,
	)
	if err != nil {
		return err
	}

	if categoryID.Valid {
		product.CategoryID = int(categoryID.Int64)
	}
	return nil
}
