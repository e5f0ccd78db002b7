package usecase

import (
	"context"
	"fmt"

	"furnistore/internal/domain"

	"github.com/sirupsen/logrus"
)

type AddressUseCase interface {
	ListAddresses(ctx context.Context, userID int) ([]domain.Address, error)
	CreateAddress(ctx context.Context, address *domain.Address) (*domain.Address, error)
	UpdateAddress(ctx context.Context, id, userID int, updates map[string]interface{}) (*domain.Address, error)
	DeleteAddress(ctx context.Context, id, userID int) error
}

type addressUseCase struct {
	addressRepo domain.AddressRepository
	log         *logrus.Logger
}

func NewAddressUseCase(repo domain.AddressRepository, logger *logrus.Logger) AddressUseCase {
	return &addressUseCase{
		addressRepo: repo,
		log:         logger,
	}
}

func (uc *addressUseCase) ListAddresses(ctx context.Context, userID int) ([]domain.Address, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user ID", domain.ErrInvalidInput)
	}
	return uc.addressRepo.ListByUser(ctx, userID)
}

func (uc *addressUseCase) CreateAddress(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	if address.UserID <= 0 {
		return nil, fmt.Errorf("%w: invalid user ID", domain.ErrInvalidInput)
	}
	if address.Line == "" || address.City == "" {
		uc.log.Warnf("Use Case: Address creation rejected for user %d - missing line or city", address.UserID)
		return nil, fmt.Errorf("%w: address line and city are required", domain.ErrInvalidInput)
	}
	if address.Recipient == "" {
		return nil, fmt.Errorf("%w: recipient name is required", domain.ErrInvalidInput)
	}

	created, err := uc.addressRepo.Create(ctx, address)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create address for user %d: %v", address.UserID, err)
		return nil, err
	}
	return created, nil
}

func (uc *addressUseCase) UpdateAddress(ctx context.Context, id, userID int, updates map[string]interface{}) (*domain.Address, error) {
	if id <= 0 || userID <= 0 {
		return nil, fmt.Errorf("%w: invalid address or user ID", domain.ErrInvalidInput)
	}

	for _, key := range []string{"line", "city", "recipient"} {
		if v, ok := updates[key]; ok {
			if s, ok := v.(string); !ok || s == "" {
				return nil, fmt.Errorf("%w: %s cannot be empty if provided", domain.ErrInvalidInput, key)
			}
		}
	}

	updated, err := uc.addressRepo.Update(ctx, id, userID, updates)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update address %d for user %d: %v", id, userID, err)
		return nil, err
	}
	return updated, nil
}

func (uc *addressUseCase) DeleteAddress(ctx context.Context, id, userID int) error {
	if id <= 0 || userID <= 0 {
		return fmt.Errorf("%w: invalid address or user ID", domain.ErrInvalidInput)
	}
	return uc.addressRepo.Delete(ctx, id, userID)
}
