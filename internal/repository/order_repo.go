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

const orderColumns = `id, user_id, total_amount, status, payment_method, payment_status,
        shipping_line, shipping_city, shipping_postal_code, shipping_country,
        contact_phone, guest_email, tracking_number, created_at`

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

type orderScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row orderScanner, order *domain.Order) error {
	var userID sql.NullInt64
	var guestEmail sql.NullString

	err := row.Scan(
		&order.ID,
		&userID,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.ShippingLine,
		&order.ShippingCity,
		&order.ShippingPostalCode,
		&order.ShippingCountry,
		&order.ContactPhone,
		&guestEmail,
		&order.TrackingNumber,
		&order.CreatedAt,
	)
	if err != nil {
		return err
	}

	if userID.Valid {
		id := int(userID.Int64)
		order.UserID = &id
	}
	if guestEmail.Valid {
		email := guestEmail.String
		order.GuestEmail = &email
	}
	return nil
}

// CreateOrder inserts the order row, its item rows and applies the stock
// decrements in one transaction. The decrement clamps at zero; it never
// drives stock negative.
func (r *postgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin checkout transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back checkout transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Rolling back checkout transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback checkout transaction: %v", rbErr)
			}
		}
	}()

	var userID sql.NullInt64
	if order.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*order.UserID), Valid: true}
	}
	var guestEmail sql.NullString
	if order.GuestEmail != nil {
		guestEmail = sql.NullString{String: *order.GuestEmail, Valid: true}
	}

	orderQuery := `
        INSERT INTO orders (user_id, total_amount, status, payment_method, payment_status,
                            shipping_line, shipping_city, shipping_postal_code, shipping_country,
                            contact_phone, guest_email, tracking_number)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, status, payment_status, created_at
    `
	err = tx.QueryRowContext(ctx, orderQuery,
		userID,
		order.TotalAmount,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.ShippingLine,
		order.ShippingCity,
		order.ShippingPostalCode,
		order.ShippingCountry,
		order.ContactPhone,
		guestEmail,
		order.TrackingNumber,
	).Scan(&order.ID, &order.Status, &order.PaymentStatus, &order.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Tracking number collision on insert: %s", order.TrackingNumber)
			return nil, fmt.Errorf("tracking number %s already exists", order.TrackingNumber)
		}
		r.log.Errorf("Failed to insert order: %v", err)
		return nil, fmt.Errorf("could not create order entry: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (order_id, product_id, quantity, unit_price)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	stmt, err := tx.PrepareContext(ctx, itemQuery)
	if err != nil {
		r.log.Errorf("Failed to prepare order item statement: %v", err)
		return nil, fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	stockQuery := `
        UPDATE products
        SET stock = GREATEST(stock - $1, 0), updated_at = NOW()
        WHERE id = $2
    `
	for i := range items {
		item := &items[i]
		item.OrderID = order.ID

		var productID sql.NullInt64
		if item.ProductID != nil {
			productID = sql.NullInt64{Int64: int64(*item.ProductID), Valid: true}
		}

		err = stmt.QueryRowContext(ctx, order.ID, productID, item.Quantity, item.UnitPrice).Scan(&item.ID)
		if err != nil {
			r.log.Errorf("Failed to insert order item for order %d: %v", order.ID, err)
			return nil, fmt.Errorf("could not create order item: %w", err)
		}

		if item.ProductID == nil {
			continue
		}
		_, err = tx.ExecContext(ctx, stockQuery, item.Quantity, *item.ProductID)
		if err != nil {
			r.log.Errorf("Failed to decrement stock for product %d (order %d): %v", *item.ProductID, order.ID, err)
			return nil, fmt.Errorf("could not decrement stock for product %d: %w", *item.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		r.log.Errorf("Failed to commit checkout transaction for order %d: %v", order.ID, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	order.Items = items
	r.log.Infof("Order %d created with %d items, tracking %s", order.ID, len(items), order.TrackingNumber)
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id int, userID *int) (*domain.Order, error) {
	order := &domain.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	args := []interface{}{id}
	if userID != nil {
		// Ownership enforced at the query level: a wrong owner looks the
		// same as a missing order.
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}

	err := scanOrder(r.db.QueryRowContext(ctx, query, args...), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.GetOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *postgresOrderRepository) GetOrderByIDAndPhone(ctx context.Context, id int, phone string) (*domain.Order, error) {
	order := &domain.Order{}

	// Exact string match on the phone as stored; no format normalization.
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND contact_phone = $2`
	err := scanOrder(r.db.QueryRowContext(ctx, query, id, phone), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d and matching phone not found", id)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get order by ID %d and phone: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.GetOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// FindOrderByTracking calls the database-side lookup function keyed on
// the unique tracking number.
func (r *postgresOrderRepository) FindOrderByTracking(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	order := &domain.Order{}

	query := `SELECT ` + orderColumns + ` FROM find_order_by_tracking($1)`
	err := scanOrder(r.db.QueryRowContext(ctx, query, trackingNumber), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("No order found for tracking number %s", trackingNumber)
			return nil, fmt.Errorf("order with tracking number %s: %w", trackingNumber, domain.ErrNotFound)
		}
		r.log.Errorf("Tracking lookup failed for %s: %v", trackingNumber, err)
		return nil, fmt.Errorf("could not look up tracking number: %w", err)
	}

	return order, nil
}

func (r *postgresOrderRepository) GetOrderItems(ctx context.Context, orderID int) ([]domain.OrderItem, error) {
	itemsQuery := `
        SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), COALESCE(p.slug, ''),
               oi.quantity, oi.unit_price
        FROM order_items oi
        LEFT JOIN products p ON p.id = oi.product_id
        WHERE oi.order_id = $1
        ORDER BY oi.id
    `
	rows, err := r.db.QueryContext(ctx, itemsQuery, orderID)
	if err != nil {
		r.log.Errorf("Failed to query order items for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var productID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.OrderID, &productID, &item.ProductName, &item.ProductSlug, &item.Quantity, &item.UnitPrice); err != nil {
			r.log.Errorf("Failed to scan order item row for order ID %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		if productID.Valid {
			id := int(productID.Int64)
			item.ProductID = &id
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	r.log.Debugf("Retrieved %d items for order ID %d", len(items), orderID)
	return items, nil
}

func (r *postgresOrderRepository) ListOrdersByUser(ctx context.Context, userID, limit, offset int) ([]domain.Order, error) {
	limit, offset = clampPage(limit, offset)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listOrders(ctx, query, userID, limit, offset)
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	limit, offset = clampPage(limit, offset)

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.listOrders(ctx, query, limit, offset)
}

func (r *postgresOrderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	orderIDs := []int{}

	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			r.log.Errorf("Failed to scan order row: %v", err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration: %v", err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	itemsQuery := `
        SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), COALESCE(p.slug, ''),
               oi.quantity, oi.unit_price
        FROM order_items oi
        LEFT JOIN products p ON p.id = oi.product_id
        WHERE oi.order_id = ANY($1::int[])
        ORDER BY oi.order_id, oi.id
    `
	itemRows, err := r.db.QueryContext(ctx, itemsQuery, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Failed to query items for orders %v: %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve order items for list: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[int][]domain.OrderItem)
	for itemRows.Next() {
		var item domain.OrderItem
		var productID sql.NullInt64
		if err := itemRows.Scan(&item.ID, &item.OrderID, &productID, &item.ProductName, &item.ProductSlug, &item.Quantity, &item.UnitPrice); err != nil {
			r.log.Errorf("Failed to scan order item row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning order item data for list: %w", err)
		}
		if productID.Valid {
			id := int(productID.Int64)
			item.ProductID = &id
		}
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}
	if err = itemRows.Err(); err != nil {
		r.log.Errorf("Error during multi-order items iteration: %v", err)
		return nil, fmt.Errorf("error iterating order items for list: %w", err)
	}

	for i := range orders {
		if items, ok := itemsMap[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	return orders, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(ctx context.Context, id int, status domain.OrderStatus) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET status = $1
        WHERE id = $2
        RETURNING ` + orderColumns + `
    `
	order := &domain.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx, query, status, id), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found for status update", id)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Invalid status value '%s' for order ID %d: %v", status, id, err)
			return nil, fmt.Errorf("invalid order status provided: %s", status)
		}
		r.log.Errorf("Failed to update status for order ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update order status: %w", err)
	}

	r.log.Infof("Order %d status updated to '%s'", order.ID, order.Status)
	return order, nil
}

func (r *postgresOrderRepository) UpdatePaymentStatus(ctx context.Context, id int, status domain.PaymentStatus) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET payment_status = $1
        WHERE id = $2
        RETURNING ` + orderColumns + `
    `
	order := &domain.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx, query, status, id), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found for payment status update", id)
			return nil, fmt.Errorf("order with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to update payment status for order ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update payment status: %w", err)
	}

	r.log.Infof("Order %d payment status updated to '%s'", order.ID, order.PaymentStatus)
	return order, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
