package usecase

import (
	"context"
	"fmt"

	"furnistore/internal/domain"

	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)

	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int, updates map[string]interface{}) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int) error
}

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	// legacy, when non-nil, serves the public catalog reads from the
	// embedded database file instead of the primary store.
	legacy domain.CatalogReader
	log    *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, legacy domain.CatalogReader, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		legacy:       legacy,
		log:          logger,
	}
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if uc.legacy != nil {
		return uc.legacy.ListProducts(ctx, filter)
	}
	return uc.productRepo.ListProducts(ctx, filter)
}

func (uc *productUseCase) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: product slug is required", domain.ErrInvalidInput)
	}
	if uc.legacy != nil {
		return uc.legacy.GetProductBySlug(ctx, slug)
	}
	return uc.productRepo.GetProductBySlug(ctx, slug)
}

func (uc *productUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if uc.legacy != nil {
		return uc.legacy.ListCategories(ctx)
	}
	return uc.categoryRepo.ListCategories(ctx)
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, fmt.Errorf("%w: product name cannot be empty", domain.ErrInvalidInput)
	}
	if product.Slug == "" {
		return nil, fmt.Errorf("%w: product slug cannot be empty", domain.ErrInvalidInput)
	}
	if product.Price <= 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with invalid price: %f", product.Name, product.Price)
		return nil, fmt.Errorf("%w: product price must be positive", domain.ErrInvalidInput)
	}
	if product.Stock < 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with negative stock: %d", product.Name, product.Stock)
		return nil, fmt.Errorf("%w: product stock cannot be negative", domain.ErrInvalidInput)
	}
	if product.DiscountPercent < 0 || product.DiscountPercent > 100 {
		return nil, fmt.Errorf("%w: discount percent must be between 0 and 100", domain.ErrInvalidInput)
	}

	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created with ID %d", created.Name, created.ID)
	return created, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int, updates map[string]interface{}) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	if len(updates) == 0 {
		return uc.productRepo.GetProductByID(ctx, id)
	}

	validUpdates := make(map[string]interface{})
	for key, value := range updates {
		switch key {
		case "name", "slug":
			s, ok := value.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%w: %s cannot be empty if provided", domain.ErrInvalidInput, key)
			}
			validUpdates[key] = s
		case "description":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: description must be a string", domain.ErrInvalidInput)
			}
			validUpdates[key] = s
		case "price", "original_price":
			price, ok := value.(float64)
			if !ok || price <= 0 {
				return nil, fmt.Errorf("%w: %s must be positive if provided", domain.ErrInvalidInput, key)
			}
			validUpdates[key] = price
		case "stock":
			stock, err := toInt(value)
			if err != nil || stock < 0 {
				return nil, fmt.Errorf("%w: stock cannot be negative if provided", domain.ErrInvalidInput)
			}
			validUpdates[key] = stock
		case "discount_percent":
			pct, err := toInt(value)
			if err != nil || pct < 0 || pct > 100 {
				return nil, fmt.Errorf("%w: discount percent must be between 0 and 100", domain.ErrInvalidInput)
			}
			validUpdates[key] = pct
		case "is_featured", "is_new", "is_on_sale":
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidInput, key)
			}
			validUpdates[key] = b
		case "category_id":
			catID, err := toInt(value)
			if err != nil || catID < 0 {
				return nil, fmt.Errorf("%w: invalid category id", domain.ErrInvalidInput)
			}
			validUpdates[key] = catID
		default:
			uc.log.Warnf("Use Case: Ignoring unknown product field '%s' in update for ID %d", key, id)
		}
	}

	if len(validUpdates) == 0 {
		return uc.productRepo.GetProductByID(ctx, id)
	}

	updated, err := uc.productRepo.UpdateProduct(ctx, id, validUpdates)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update product %d: %v", id, err)
		return nil, err
	}
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	return uc.productRepo.DeleteProduct(ctx, id)
}

func (uc *productUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.Name == "" || category.Slug == "" {
		return nil, fmt.Errorf("%w: category name and slug are required", domain.ErrInvalidInput)
	}
	return uc.categoryRepo.CreateCategory(ctx, category)
}

func (uc *productUseCase) DeleteCategory(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid category ID", domain.ErrInvalidInput)
	}
	return uc.categoryRepo.DeleteCategory(ctx, id)
}

// toInt accepts both int and the float64 that encoding/json produces for
// numbers in a map payload.
func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("not a number: %T", value)
	}
}
