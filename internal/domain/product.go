package domain

import (
	"context"
	"time"
)

type Product struct {
	ID              int            `json:"id"`
	Slug            string         `json:"slug"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Price           float64        `json:"price"`
	OriginalPrice   float64        `json:"original_price"`
	DiscountPercent int            `json:"discount_percent"`
	Stock           int            `json:"stock"`
	IsFeatured      bool           `json:"is_featured"`
	IsNew           bool           `json:"is_new"`
	IsOnSale        bool           `json:"is_on_sale"`
	CategoryID      int            `json:"category_id,omitempty"`
	Images          []ProductImage `json:"images,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID int    `json:"product_id"`
	FilePath  string `json:"file_path"`
	SortOrder int    `json:"sort_order"`
}

type Category struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type ProductFilter struct {
	CategorySlug string
	Featured     *bool
	New          *bool
	OnSale       *bool
	Limit        int
	Offset       int
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	UpdateProduct(ctx context.Context, id int, updates map[string]interface{}) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]Category, error)
}

// CatalogReader is the read-only subset of the catalog served by the
// legacy embedded database when it is configured.
type CatalogReader interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
