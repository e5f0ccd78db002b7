package domain

import (
	"context"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

const PaymentMethodBankTransfer = "bank_transfer"

type Order struct {
	ID                 int           `json:"id"`
	UserID             *int          `json:"user_id,omitempty"`
	TotalAmount        float64       `json:"total_amount"`
	Status             OrderStatus   `json:"status"`
	PaymentMethod      string        `json:"payment_method"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	ShippingLine       string        `json:"shipping_line"`
	ShippingCity       string        `json:"shipping_city"`
	ShippingPostalCode string        `json:"shipping_postal_code"`
	ShippingCountry    string        `json:"shipping_country"`
	ContactPhone       string        `json:"contact_phone"`
	GuestEmail         *string       `json:"guest_email,omitempty"`
	TrackingNumber     string        `json:"tracking_number"`
	CreatedAt          time.Time     `json:"created_at"`
	Items              []OrderItem   `json:"items,omitempty"`
}

// OrderItem snapshots the unit price at order time; later product price
// changes do not affect it.
type OrderItem struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"order_id"`
	ProductID   *int    `json:"product_id,omitempty"`
	ProductName string  `json:"product_name,omitempty"`
	ProductSlug string  `json:"product_slug,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type OrderImage struct {
	ID        string    `json:"id"`
	OrderID   int       `json:"order_id"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderRepository interface {
	// CreateOrder applies the order row, its item rows and the per-item
	// stock decrements as a single transaction.
	CreateOrder(ctx context.Context, order *Order, items []OrderItem) (*Order, error)
	GetOrderByID(ctx context.Context, id int, userID *int) (*Order, error)
	GetOrderByIDAndPhone(ctx context.Context, id int, phone string) (*Order, error)
	FindOrderByTracking(ctx context.Context, trackingNumber string) (*Order, error)
	GetOrderItems(ctx context.Context, orderID int) ([]OrderItem, error)
	ListOrdersByUser(ctx context.Context, userID, limit, offset int) ([]Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status OrderStatus) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id int, status PaymentStatus) (*Order, error)
}

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func IsValidPaymentStatus(status PaymentStatus) bool {
	return status == PaymentPending || status == PaymentCompleted
}
