package usecase

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"testing"

	"furnistore/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// fakeOrderRepo mirrors the transactional contract of the real repository:
// the order, its items and the clamped stock decrements land together or
// not at all.
type fakeOrderRepo struct {
	orders     map[int]*domain.Order
	items      map[int][]domain.OrderItem
	stock      map[int]int
	nextID     int
	createErr  error
	createCall int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[int]*domain.Order),
		items:  make(map[int][]domain.OrderItem),
		stock:  make(map[int]int),
		nextID: 1,
	}
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, order *domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	f.createCall++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.orders {
		if existing.TrackingNumber == order.TrackingNumber {
			return nil, fmt.Errorf("tracking number %s already exists", order.TrackingNumber)
		}
	}

	order.ID = f.nextID
	f.nextID++
	for i := range items {
		items[i].ID = i + 1
		items[i].OrderID = order.ID
		if items[i].ProductID == nil {
			continue
		}
		remaining := f.stock[*items[i].ProductID] - items[i].Quantity
		if remaining < 0 {
			remaining = 0
		}
		f.stock[*items[i].ProductID] = remaining
	}
	order.Items = items
	stored := *order
	f.orders[order.ID] = &stored
	f.items[order.ID] = items
	return order, nil
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id int, userID *int) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}
	if userID != nil {
		if order.UserID == nil || *order.UserID != *userID {
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
		}
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) GetOrderByIDAndPhone(_ context.Context, id int, phone string) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok || order.ContactPhone != phone {
		return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) FindOrderByTracking(_ context.Context, trackingNumber string) (*domain.Order, error) {
	for _, order := range f.orders {
		if order.TrackingNumber == trackingNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("order with tracking number %s: %w", trackingNumber, domain.ErrNotFound)
}

func (f *fakeOrderRepo) GetOrderItems(_ context.Context, orderID int) ([]domain.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) ListOrdersByUser(_ context.Context, userID, limit, offset int) ([]domain.Order, error) {
	var result []domain.Order
	for _, order := range f.orders {
		if order.UserID != nil && *order.UserID == userID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, limit, offset int) ([]domain.Order, error) {
	var result []domain.Order
	for _, order := range f.orders {
		result = append(result, *order)
	}
	return result, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, id int, status domain.OrderStatus) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}
	order.Status = status
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, id int, status domain.PaymentStatus) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
	}
	order.PaymentStatus = status
	copied := *order
	return &copied, nil
}

func cartItem(productID int, price float64, qty int) CartItem {
	return CartItem{
		Product:  &CartProduct{ID: intPtr(productID), Price: floatPtr(price)},
		Quantity: qty,
	}
}

func validAddress() *ShippingAddress {
	return &ShippingAddress{Line: "12 Oak Street", City: "Almaty", PostalCode: "050000", Country: "KZ"}
}

func TestCheckoutTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []CartItem
		wantSubtotal float64
		wantTotal    float64
	}{
		{
			name:         "above threshold ships free",
			items:        []CartItem{cartItem(1, 3000, 2)},
			wantSubtotal: 6000,
			wantTotal:    6000,
		},
		{
			name:         "below threshold pays flat fee",
			items:        []CartItem{cartItem(1, 1000, 2)},
			wantSubtotal: 2000,
			wantTotal:    2150,
		},
		{
			name:         "exactly at threshold still pays the fee",
			items:        []CartItem{cartItem(1, 2500, 2)},
			wantSubtotal: 5000,
			wantTotal:    5150,
		},
		{
			name: "item without price snapshot counts as zero",
			items: []CartItem{
				{Product: &CartProduct{ID: intPtr(1)}, Quantity: 3},
				cartItem(2, 400, 1),
			},
			wantSubtotal: 400,
			wantTotal:    550,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo()
			uc := NewOrderUseCase(repo, 5000, 150, testLogger())

			order, err := uc.Checkout(context.Background(), &CheckoutRequest{
				CartItems:       tt.items,
				ShippingAddress: validAddress(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, order.TotalAmount)
			assert.Equal(t, domain.StatusPending, order.Status)
			assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
			assert.Equal(t, domain.PaymentMethodBankTransfer, order.PaymentMethod)
		})
	}
}

func TestCheckoutValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *CheckoutRequest
	}{
		{
			name: "empty cart",
			req:  &CheckoutRequest{ShippingAddress: validAddress()},
		},
		{
			name: "missing shipping address",
			req:  &CheckoutRequest{CartItems: []CartItem{cartItem(1, 100, 1)}},
		},
		{
			name: "address without line",
			req: &CheckoutRequest{
				CartItems:       []CartItem{cartItem(1, 100, 1)},
				ShippingAddress: &ShippingAddress{City: "Almaty"},
			},
		},
		{
			name: "address without city",
			req: &CheckoutRequest{
				CartItems:       []CartItem{cartItem(1, 100, 1)},
				ShippingAddress: &ShippingAddress{Line: "12 Oak Street"},
			},
		},
		{
			name: "zero quantity",
			req: &CheckoutRequest{
				CartItems:       []CartItem{cartItem(1, 100, 0)},
				ShippingAddress: validAddress(),
			},
		},
		{
			name: "negative quantity",
			req: &CheckoutRequest{
				CartItems:       []CartItem{cartItem(1, 100, -2)},
				ShippingAddress: validAddress(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo()
			uc := NewOrderUseCase(repo, 5000, 150, testLogger())

			_, err := uc.Checkout(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, repo.createCall, "validation failure must not reach the repository")
		})
	}
}

func TestCheckoutTrackingNumberFormat(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	pattern := regexp.MustCompile(`^TR\d{10}$`)
	for i := 0; i < 20; i++ {
		order, err := uc.Checkout(context.Background(), &CheckoutRequest{
			CartItems:       []CartItem{cartItem(1, 100, 1)},
			ShippingAddress: validAddress(),
		})
		require.NoError(t, err)
		assert.Regexp(t, pattern, order.TrackingNumber)
	}
}

func TestCheckoutStockClampsAtZero(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.stock[1] = 3
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	_, err := uc.Checkout(context.Background(), &CheckoutRequest{
		CartItems:       []CartItem{cartItem(1, 100, 10)},
		ShippingAddress: validAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.stock[1], "oversell decrements to zero, never below")
}

func TestCheckoutGuestEmail(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	order, err := uc.Checkout(context.Background(), &CheckoutRequest{
		CartItems:       []CartItem{cartItem(1, 100, 1)},
		ShippingAddress: validAddress(),
		GuestEmail:      "guest@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, order.GuestEmail)
	assert.Equal(t, "guest@example.com", *order.GuestEmail)
	assert.Nil(t, order.UserID)
}

func TestTrackOrderRoundTrip(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	created, err := uc.Checkout(context.Background(), &CheckoutRequest{
		CartItems:       []CartItem{cartItem(1, 250, 2)},
		ShippingAddress: validAddress(),
	})
	require.NoError(t, err)

	tracked, err := uc.TrackOrder(context.Background(), "  "+created.TrackingNumber+" ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, tracked.ID)
	assert.Equal(t, created.TrackingNumber, tracked.TrackingNumber)
	assert.Len(t, tracked.Items, 1)
}

func TestTrackOrderValidation(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	_, err := uc.TrackOrder(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.TrackOrder(context.Background(), "TR0000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetOrderByIDOwnership(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	owner := 7
	created, err := uc.Checkout(context.Background(), &CheckoutRequest{
		UserID:          &owner,
		CartItems:       []CartItem{cartItem(1, 100, 1)},
		ShippingAddress: validAddress(),
	})
	require.NoError(t, err)

	_, err = uc.GetOrderByID(context.Background(), created.ID, intPtr(owner))
	assert.NoError(t, err)

	_, err = uc.GetOrderByID(context.Background(), created.ID, intPtr(99))
	assert.ErrorIs(t, err, domain.ErrNotFound, "wrong owner looks like a missing order")
}

func TestUpdateOrderStatusGuards(t *testing.T) {
	newOrderWithStatus := func(status domain.OrderStatus) (*fakeOrderRepo, int) {
		repo := newFakeOrderRepo()
		repo.orders[1] = &domain.Order{ID: 1, Status: status}
		return repo, 1
	}

	t.Run("cancelled is terminal", func(t *testing.T) {
		repo, id := newOrderWithStatus(domain.StatusCancelled)
		uc := NewOrderUseCase(repo, 5000, 150, testLogger())

		_, err := uc.UpdateOrderStatus(context.Background(), id, domain.StatusShipped)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("delivered cannot revert to pending", func(t *testing.T) {
		repo, id := newOrderWithStatus(domain.StatusDelivered)
		uc := NewOrderUseCase(repo, 5000, 150, testLogger())

		_, err := uc.UpdateOrderStatus(context.Background(), id, domain.StatusPending)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("pending to paid", func(t *testing.T) {
		repo, id := newOrderWithStatus(domain.StatusPending)
		uc := NewOrderUseCase(repo, 5000, 150, testLogger())

		updated, err := uc.UpdateOrderStatus(context.Background(), id, domain.StatusPaid)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaid, updated.Status)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		repo, id := newOrderWithStatus(domain.StatusPending)
		uc := NewOrderUseCase(repo, 5000, 150, testLogger())

		_, err := uc.UpdateOrderStatus(context.Background(), id, domain.OrderStatus("archived"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.orders[1] = &domain.Order{ID: 1, Status: domain.StatusPending, PaymentStatus: domain.PaymentPending}
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	updated, err := uc.UpdatePaymentStatus(context.Background(), 1, domain.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, updated.PaymentStatus)

	_, err = uc.UpdatePaymentStatus(context.Background(), 1, domain.PaymentStatus("refunded"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetGuestOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, 5000, 150, testLogger())

	created, err := uc.Checkout(context.Background(), &CheckoutRequest{
		CartItems:       []CartItem{cartItem(1, 100, 1)},
		ShippingAddress: validAddress(),
		ContactPhone:    "+77010000000",
	})
	require.NoError(t, err)

	found, err := uc.GetOrderByID(context.Background(), created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = uc.GetGuestOrder(context.Background(), created.ID, "+77019999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	guest, err := uc.GetGuestOrder(context.Background(), created.ID, "+77010000000")
	require.NoError(t, err)
	assert.Equal(t, created.ID, guest.ID)

	_, err = uc.GetGuestOrder(context.Background(), created.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
