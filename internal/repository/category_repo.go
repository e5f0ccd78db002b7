package repository

import (
	"context"
	"database/sql"
	"fmt"

	"furnistore/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
        INSERT INTO categories (slug, name)
        VALUES ($1, $2)
        RETURNING id
    `
	err := r.db.QueryRowContext(ctx, query, category.Slug, category.Name).Scan(&category.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Attempted to create category with duplicate slug: %s", category.Slug)
			return nil, fmt.Errorf("category with slug '%s' already exists", category.Slug)
		}
		r.log.Errorf("Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}

	r.log.Infof("Category created with ID: %d, slug: %s", category.ID, category.Slug)
	return category, nil
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id int) error {
	query := `DELETE FROM categories WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Attempted to delete category %d still referenced by products", id)
			return fmt.Errorf("category with id %d is still referenced by products", id)
		}
		r.log.Errorf("Failed to delete category ID %d: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent category ID %d", id)
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Category deleted with ID: %d", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, slug, name FROM categories ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name); err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}
