package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"furnistore/internal/domain"

	"github.com/sirupsen/logrus"
)

type CartProduct struct {
	ID    *int     `json:"id"`
	Price *float64 `json:"price"`
	Stock *int     `json:"stock"`
}

type CartItem struct {
	Product  *CartProduct `json:"product"`
	Quantity int          `json:"quantity"`
}

type ShippingAddress struct {
	Line       string `json:"line"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type CheckoutRequest struct {
	UserID          *int             `json:"userId"`
	CartItems       []CartItem       `json:"cartItems"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	ContactPhone    string           `json:"contactPhone"`
	GuestEmail      string           `json:"guestEmail"`
}

type OrderUseCase interface {
	Checkout(ctx context.Context, req *CheckoutRequest) (*domain.Order, error)
	TrackOrder(ctx context.Context, trackingNumber string) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id int, userID *int) (*domain.Order, error)
	GetGuestOrder(ctx context.Context, id int, phone string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID, limit, offset int) ([]domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int, status domain.PaymentStatus) (*domain.Order, error)
}

type orderUseCase struct {
	orderRepo         domain.OrderRepository
	freeShippingLimit float64
	flatShippingFee   float64
	log               *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, freeShippingLimit, flatShippingFee float64, logger *logrus.Logger) OrderUseCase {
	return &orderUseCase{
		orderRepo:         repo,
		freeShippingLimit: freeShippingLimit,
		flatShippingFee:   flatShippingFee,
		log:               logger,
	}
}

func (uc *orderUseCase) Checkout(ctx context.Context, req *CheckoutRequest) (*domain.Order, error) {
	if len(req.CartItems) == 0 {
		uc.log.Warn("Use Case: Checkout rejected - empty cart")
		return nil, fmt.Errorf("%w: cart cannot be empty", domain.ErrInvalidInput)
	}
	if req.ShippingAddress == nil || req.ShippingAddress.Line == "" || req.ShippingAddress.City == "" {
		uc.log.Warn("Use Case: Checkout rejected - missing shipping address")
		return nil, fmt.Errorf("%w: shipping address is required", domain.ErrInvalidInput)
	}
	for i, item := range req.CartItems {
		if item.Quantity <= 0 {
			uc.log.Warnf("Use Case: Checkout rejected - item %d has non-positive quantity %d", i, item.Quantity)
			return nil, fmt.Errorf("%w: item %d quantity must be positive", domain.ErrInvalidInput, i)
		}
	}

	subtotal, shipping, total := uc.computeTotals(req.CartItems)
	uc.log.Infof("Use Case: Checkout totals computed: subtotal=%.2f shipping=%.2f total=%.2f", subtotal, shipping, total)

	var guestEmail *string
	if req.GuestEmail != "" {
		email := req.GuestEmail
		guestEmail = &email
	}

	order := &domain.Order{
		UserID:             req.UserID,
		TotalAmount:        total,
		Status:             domain.StatusPending,
		PaymentMethod:      domain.PaymentMethodBankTransfer,
		PaymentStatus:      domain.PaymentPending,
		ShippingLine:       req.ShippingAddress.Line,
		ShippingCity:       req.ShippingAddress.City,
		ShippingPostalCode: req.ShippingAddress.PostalCode,
		ShippingCountry:    req.ShippingAddress.Country,
		ContactPhone:       req.ContactPhone,
		GuestEmail:         guestEmail,
		TrackingNumber:     newTrackingNumber(),
	}

	items := make([]domain.OrderItem, 0, len(req.CartItems))
	for _, cartItem := range req.CartItems {
		item := domain.OrderItem{
			Quantity:  cartItem.Quantity,
			UnitPrice: itemPrice(cartItem),
		}
		if cartItem.Product != nil {
			item.ProductID = cartItem.Product.ID
		}
		items = append(items, item)
	}

	created, err := uc.orderRepo.CreateOrder(ctx, order, items)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create order: %v", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	uc.log.Infof("Use Case: Order %d created, tracking %s, total %.2f", created.ID, created.TrackingNumber, created.TotalAmount)
	return created, nil
}

func (uc *orderUseCase) TrackOrder(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, fmt.Errorf("%w: tracking number is required", domain.ErrInvalidInput)
	}

	order, err := uc.orderRepo.FindOrderByTracking(ctx, trackingNumber)
	if err != nil {
		uc.log.Warnf("Use Case: Tracking lookup failed for %s: %v", trackingNumber, err)
		return nil, err
	}

	items, err := uc.orderRepo.GetOrderItems(ctx, order.ID)
	if err != nil {
		// Item fetch is best-effort on this path; the order itself is the
		// primary result.
		uc.log.Warnf("Use Case: Failed to fetch items for tracked order %d: %v", order.ID, err)
		items = []domain.OrderItem{}
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	order.Items = items

	return order, nil
}

func (uc *orderUseCase) GetOrderByID(ctx context.Context, id int, userID *int) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrInvalidInput)
	}
	return uc.orderRepo.GetOrderByID(ctx, id, userID)
}

func (uc *orderUseCase) GetGuestOrder(ctx context.Context, id int, phone string) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrInvalidInput)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", domain.ErrInvalidInput)
	}
	return uc.orderRepo.GetOrderByIDAndPhone(ctx, id, phone)
}

func (uc *orderUseCase) ListOrdersByUser(ctx context.Context, userID, limit, offset int) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user ID", domain.ErrInvalidInput)
	}
	orders, err := uc.orderRepo.ListOrdersByUser(ctx, userID, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve orders for user %d: %w", userID, err)
	}
	return orders, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	orders, err := uc.orderRepo.ListOrders(ctx, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	return orders, nil
}

func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, id int, status domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrInvalidInput)
	}
	if !domain.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: invalid order status '%s'", domain.ErrInvalidInput, status)
	}

	current, err := uc.orderRepo.GetOrderByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	if current.Status == domain.StatusCancelled && status != domain.StatusCancelled {
		uc.log.Warnf("Use Case: Attempt to change status of cancelled order %d", id)
		return nil, fmt.Errorf("%w: cannot change status of a cancelled order", domain.ErrInvalidInput)
	}
	if current.Status == domain.StatusDelivered && status == domain.StatusPending {
		uc.log.Warnf("Use Case: Attempt to revert delivered order %d to pending", id)
		return nil, fmt.Errorf("%w: cannot revert a delivered order to pending", domain.ErrInvalidInput)
	}

	return uc.orderRepo.UpdateOrderStatus(ctx, id, status)
}

func (uc *orderUseCase) UpdatePaymentStatus(ctx context.Context, id int, status domain.PaymentStatus) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrInvalidInput)
	}
	if !domain.IsValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: invalid payment status '%s'", domain.ErrInvalidInput, status)
	}
	return uc.orderRepo.UpdatePaymentStatus(ctx, id, status)
}

// computeTotals sums price*quantity over the cart. A cart item without a
// price snapshot counts as zero. Shipping is free strictly above the
// threshold, otherwise the flat fee applies.
func (uc *orderUseCase) computeTotals(items []CartItem) (subtotal, shipping, total float64) {
	for _, item := range items {
		subtotal += itemPrice(item) * float64(item.Quantity)
	}
	if subtotal > uc.freeShippingLimit {
		shipping = 0
	} else {
		shipping = uc.flatShippingFee
	}
	return subtotal, shipping, subtotal + shipping
}

func itemPrice(item CartItem) float64 {
	if item.Product == nil || item.Product.Price == nil {
		return 0
	}
	return *item.Product.Price
}

// newTrackingNumber builds "TR" + 6 random digits + the last 4 digits of
// the current unix timestamp. Uniqueness is not probed here; the unique
// index on orders.tracking_number catches the rare collision.
func newTrackingNumber() string {
	return fmt.Sprintf("TR%06d%04d", rand.Intn(1000000), time.Now().Unix()%10000)
}
