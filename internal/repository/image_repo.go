package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"furnistore/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresImageRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresImageRepository(db *sql.DB, logger *logrus.Logger) domain.ImageRepository {
	return &postgresImageRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresImageRepository) AddProductImage(ctx context.Context, image *domain.ProductImage) (*domain.ProductImage, error) {
	query := `
        INSERT INTO product_images (id, product_id, file_path, sort_order)
        VALUES ($1, $2, $3, $4)
    `
	_, err := r.db.ExecContext(ctx, query, image.ID, image.ProductID, image.FilePath, image.SortOrder)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Attempted to attach image to non-existent product %d", image.ProductID)
			return nil, fmt.Errorf("product with id %d: %w", image.ProductID, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to insert product image for product %d: %v", image.ProductID, err)
		return nil, fmt.Errorf("could not store product image: %w", err)
	}

	r.log.Infof("Product image %s stored for product %d", image.ID, image.ProductID)
	return image, nil
}

// DeleteProductImage removes the metadata row and returns the stored file
// path so the caller can remove the file from disk.
func (r *postgresImageRepository) DeleteProductImage(ctx context.Context, id string) (string, error) {
	query := `DELETE FROM product_images WHERE id = $1 RETURNING file_path`
	var filePath string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&filePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product image %s not found for deletion", id)
			return "", fmt.Errorf("image with id %s: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to delete product image %s: %v", id, err)
		return "", fmt.Errorf("could not delete product image: %w", err)
	}
	r.log.Infof("Product image %s deleted", id)
	return filePath, nil
}

func (r *postgresImageRepository) ListProductImages(ctx context.Context, productID int) ([]domain.ProductImage, error) {
	query := `
        SELECT id, product_id, file_path, sort_order
        FROM product_images
        WHERE product_id = $1
        ORDER BY sort_order ASC
    `
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		r.log.Errorf("Failed to list images for product %d: %v", productID, err)
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
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	if images == nil {
		images = []domain.ProductImage{}
	}
	return images, nil
}

func (r *postgresImageRepository) AddOrderImage(ctx context.Context, image *domain.OrderImage) (*domain.OrderImage, error) {
	query := `
        INSERT INTO order_images (id, order_id, file_path)
        VALUES ($1, $2, $3)
        RETURNING created_at
    `
	err := r.db.QueryRowContext(ctx, query, image.ID, image.OrderID, image.FilePath).Scan(&image.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Attempted to attach image to non-existent order %d", image.OrderID)
			return nil, fmt.Errorf("order with id %d: %w", image.OrderID, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to insert order image for order %d: %v", image.OrderID, err)
		return nil, fmt.Errorf("could not store order image: %w", err)
	}

	r.log.Infof("Order image %s stored for order %d", image.ID, image.OrderID)
	return image, nil
}

func (r *postgresImageRepository) DeleteOrderImage(ctx context.Context, orderID int, id string) (string, error) {
	query := `DELETE FROM order_images WHERE id = $1 AND order_id = $2 RETURNING file_path`
	var filePath string
	err := r.db.QueryRowContext(ctx, query, id, orderID).Scan(&filePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order image %s not found on order %d for deletion", id, orderID)
			return "", fmt.Errorf("image with id %s: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to delete order image %s: %v", id, err)
		return "", fmt.Errorf("could not delete order image: %w", err)
	}
	r.log.Infof("Order image %s deleted from order %d", id, orderID)
	return filePath, nil
}

func (r *postgresImageRepository) ListOrderImages(ctx context.Context, orderID int) ([]domain.OrderImage, error) {
	query := `
        SELECT id, order_id, file_path, created_at
        FROM order_images
        WHERE order_id = $1
        ORDER BY created_at ASC
    `
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.log.Errorf("Failed to list images for order %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order images: %w", err)
	}
	defer rows.Close()

	var images []domain.OrderImage
	for rows.Next() {
		var img domain.OrderImage
		if err := rows.Scan(&img.ID, &img.OrderID, &img.FilePath, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning order image: %w", err)
		}
		images = append(images, img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order images: %w", err)
	}

	if images == nil {
		images = []domain.OrderImage{}
	}
	return images, nil
}
