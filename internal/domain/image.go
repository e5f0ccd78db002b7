package domain

import "context"

type ImageRepository interface {
	AddProductImage(ctx context.Context, image *ProductImage) (*ProductImage, error)
	DeleteProductImage(ctx context.Context, id string) (string, error)
	ListProductImages(ctx context.Context, productID int) ([]ProductImage, error)

	AddOrderImage(ctx context.Context, image *OrderImage) (*OrderImage, error)
	DeleteOrderImage(ctx context.Context, orderID int, id string) (string, error)
	ListOrderImages(ctx context.Context, orderID int) ([]OrderImage, error)
}
