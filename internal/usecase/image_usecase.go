package usecase

import (
	"context"
	"fmt"

	"furnistore/internal/domain"

	"github.com/sirupsen/logrus"
)

type ImageUseCase interface {
	StoreProductImage(ctx context.Context, image *domain.ProductImage) (*domain.ProductImage, error)
	RemoveProductImage(ctx context.Context, id string) (string, error)
	StoreOrderImage(ctx context.Context, image *domain.OrderImage) (*domain.OrderImage, error)
	RemoveOrderImage(ctx context.Context, orderID int, id string) (string, error)
	ListOrderImages(ctx context.Context, orderID int) ([]domain.OrderImage, error)
}

type imageUseCase struct {
	imageRepo domain.ImageRepository
	log       *logrus.Logger
}

func NewImageUseCase(repo domain.ImageRepository, logger *logrus.Logger) ImageUseCase {
	return &imageUseCase{
		imageRepo: repo,
		log:       logger,
	}
}

func (uc *imageUseCase) StoreProductImage(ctx context.Context, image *domain.ProductImage) (*domain.ProductImage, error) {
	if image.ID == "" || image.FilePath == "" {
		return nil, fmt.Errorf("%w: image id and file path are required", domain.ErrInvalidInput)
	}
	if image.ProductID <= 0 {
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	return uc.imageRepo.AddProductImage(ctx, image)
}

func (uc *imageUseCase) RemoveProductImage(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: image ID is required", domain.ErrInvalidInput)
	}
	return uc.imageRepo.DeleteProductImage(ctx, id)
}

func (uc *imageUseCase) StoreOrderImage(ctx context.Context, image *domain.OrderImage) (*domain.OrderImage, error) {
	if image.ID == "" || image.FilePath == "" {
		return nil, fmt.Errorf("%w: image id and file path are required", domain.ErrInvalidInput)
	}
	if image.OrderID <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrInvalidInput)
	}
	return uc.imageRepo.AddOrderImage(ctx, image)
}

func (uc *imageUseCase) RemoveOrderImage(ctx context.Context, orderID int, id string) (string, error) {
	if orderID <= 0 || id == "" {
		return "", fmt.Errorf("%w: order ID and image ID are required", domain.ErrInvalidInput)
	}
	return uc.imageRepo.DeleteOrderImage(ctx, orderID, id)
}

func (uc *imageUseCase) ListOrderImages(ctx context.Context, orderID int) ([]domain.OrderImage, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrInvalidInput)
	}
	return uc.imageRepo.ListOrderImages(ctx, orderID)
}
