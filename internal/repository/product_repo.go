package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"furnistore/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, slug, name, description, price, original_price, discount_percent,
        stock, is_featured, is_new, is_on_sale, category_id, created_at, updated_at`

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func scanProduct(row orderScanner, product *domain.Product) error {
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
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if categoryID.Valid {
		product.CategoryID = int(categoryID.Int64)
	}
	return nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (slug, name, description, price, original_price, discount_percent,
                              stock, is_featured, is_new, is_on_sale, category_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at
    `
	var categoryID sql.NullInt64
	if product.CategoryID != 0 {
		categoryID = sql.NullInt64{Int64: int64(product.CategoryID), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		product.Slug, product.Name, product.Description, product.Price,
		product.OriginalPrice, product.DiscountPercent, product.Stock,
		product.IsFeatured, product.IsNew, product.IsOnSale, categoryID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				r.log.Warnf("Attempted to create product with duplicate slug: %s", product.Slug)
				return nil, fmt.Errorf("product with slug '%s' already exists", product.Slug)
			case "23503":
				r.log.Warnf("Attempted to create product with non-existent category ID: %d", product.CategoryID)
				return nil, fmt.Errorf("category with id %d does not exist", product.CategoryID)
			case "23514":
				r.log.Warnf("Check constraint violation for product '%s': %s", product.Name, pqErr.Message)
				return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
			}
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	r.log.Infof("Product created with ID: %d, slug: %s", product.ID, product.Slug)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product := &domain.Product{}

	err := scanProduct(r.db.QueryRowContext(ctx, query, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	return product, nil
}

func (r *postgresProductRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	product := &domain.Product{}

	err := scanProduct(r.db.QueryRowContext(ctx, query, slug), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with slug '%s' not found", slug)
			return nil, fmt.Errorf("product with slug '%s': %w", slug, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get product by slug '%s': %v", slug, err)
		return nil, fmt.Errorf("could not get product by slug: %w", err)
	}

	images, err := r.productImages(ctx, product.ID)
	if err != nil {
		// Detail page still renders without its gallery.
		r.log.Warnf("Failed to fetch images for product %d: %v", product.ID, err)
	} else {
		product.Images = images
	}

	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, id int, updates map[string]interface{}) (*domain.Product, error) {
	if len(updates) == 0 {
		return r.GetProductByID(ctx, id)
	}

	queryBase := "UPDATE products SET "
	args := []interface{}{}
	setClauses := []string{}
	argCounter := 1

	for key, value := range updates {
		argValue := value

		switch key {
		case "slug", "name", "description", "price", "original_price", "discount_percent",
			"stock", "is_featured", "is_new", "is_on_sale":
		case "category_id":
			catID, ok := value.(int)
			if !ok {
				r.log.Errorf("Invalid type received for category_id for product ID %d: %T", id, value)
				return nil, fmt.Errorf("internal error: invalid type for category_id in repository")
			}
			if catID == 0 {
				argValue = nil
			}
		default:
			r.log.Warnf("Skipping unknown field '%s' provided for product update ID %d", key, id)
			continue
		}

		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, argCounter))
		args = append(args, argValue)
		argCounter++
	}

	if len(setClauses) == 0 {
		return r.GetProductByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := queryBase + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			catID := 0
			if catIDVal, exists := updates["category_id"]; exists {
				catID, _ = catIDVal.(int)
			}
			r.log.Warnf("Attempted to update product ID %d with non-existent category ID: %d", id, catID)
			return nil, fmt.Errorf("category with id %d does not exist", catID)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation for product update ID %d: %s", id, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Failed to update product ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		r.log.Warnf("Product with ID %d not found for update", id)
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}

	return r.GetProductByID(ctx, id)
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id int) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Errorf("Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %d: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Product deleted with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	query := `
        SELECT p.id, p.slug, p.name, p.description, p.price, p.original_price, p.discount_percent,
               p.stock, p.is_featured, p.is_new, p.is_on_sale, p.category_id, p.created_at, p.updated_at
        FROM products p`
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1

	if filter.CategorySlug != "" {
		query += ` JOIN categories c ON c.id = p.category_id`
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", argCounter))
		args = append(args, filter.CategorySlug)
		argCounter++
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_featured = $%d", argCounter))
		args = append(args, *filter.Featured)
		argCounter++
	}
	if filter.New != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_new = $%d", argCounter))
		args = append(args, *filter.New)
		argCounter++
	}
	if filter.OnSale != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_on_sale = $%d", argCounter))
		args = append(args, *filter.OnSale)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY p.id ASC LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during product iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (r *postgresProductRepository) productImages(ctx context.Context, productID int) ([]domain.ProductImage, error) {
	query := `
        SELECT id, product_id, file_path, sort_order
        FROM product_images
        WHERE product_id = $1
        ORDER BY sort_order ASC
    `
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve product images: %w", err)
	}
	defer rows.Close()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.FilePath, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("error scanning product image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
