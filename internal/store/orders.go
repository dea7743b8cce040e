package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `order_id, order_token, customer_id, order_type, table_number, order_status,
	special_instructions, subtotal, gst_amount, service_charge, total_amount,
	order_date, created_at, completed_at`

const orderSummaryColumns = `o.order_id, o.order_token, o.customer_id, o.order_type, o.table_number,
	o.order_status, o.special_instructions, o.subtotal, o.gst_amount, o.service_charge,
	o.total_amount, o.order_date, o.created_at, o.completed_at,
	c.name AS customer_name, c.phone AS customer_phone`

// LatestOrderToken returns the most recent token issued on orderDate with the
// given prefix, or an empty string when none was issued yet
func (s *Queries) LatestOrderToken(ctx context.Context, orderDate, prefix string) (string, error) {
	var token string
	err := sqlx.GetContext(ctx, s.q, &token, `
		SELECT order_token FROM orders
		WHERE order_token LIKE $1 AND order_date = $2::date
		ORDER BY order_id DESC
		LIMIT 1`, prefix+"%", orderDate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up latest order token: %w", err)
	}
	return token, nil
}

// CreateOrder creates a new order
func (s *Queries) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (
			order_token, customer_id, order_type, table_number, order_status,
			special_instructions, subtotal, gst_amount, service_charge, total_amount, order_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::date)
		RETURNING order_id, order_date, created_at`

	row := s.q.QueryRowxContext(ctx, query,
		order.Token, order.CustomerID, order.OrderType, order.TableNumber, order.Status,
		order.SpecialInstructions, order.Subtotal, order.GSTAmount, order.ServiceCharge,
		order.TotalAmount, order.OrderDate.Format(models.DateLayout))
	return classify(row.Scan(&order.ID, &order.OrderDate, &order.CreatedAt))
}

// CreateOrderItem creates a new order item
func (s *Queries) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, menu_id, quantity, unit_price, subtotal, customization, item_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_item_id`

	row := s.q.QueryRowxContext(ctx, query,
		item.OrderID, item.MenuID, item.Quantity, item.UnitPrice,
		item.Subtotal, item.Customization, item.ItemStatus)
	return classify(row.Scan(&item.ID))
}

// GetOrder retrieves an order by ID with its customer's contact details
func (s *Queries) GetOrder(ctx context.Context, id int64) (*models.OrderSummary, error) {
	var order models.OrderSummary
	err := sqlx.GetContext(ctx, s.q, &order, `
		SELECT `+orderSummaryColumns+`
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.customer_id
		WHERE o.order_id = $1`, id)
	if err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// LockOrder reads an order and holds its row lock until the transaction ends
func (s *Queries) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := sqlx.GetContext(ctx, s.q, &order,
		"SELECT "+orderColumns+" FROM orders WHERE order_id = $1 FOR UPDATE", id)
	if err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// ListOrders retrieves orders with customer details
func (s *Queries) ListOrders(ctx context.Context, f OrderFilter) ([]models.OrderSummary, error) {
	query := `
		SELECT ` + orderSummaryColumns + `
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.customer_id
		WHERE 1=1`
	var args []interface{}

	if len(f.Statuses) > 0 {
		query += " AND o.order_status IN (?)"
		args = append(args, f.Statuses)
	}
	if f.OrderType != "" {
		query += " AND o.order_type = ?"
		args = append(args, f.OrderType)
	}
	if f.Date != "" {
		query += " AND o.order_date = ?::date"
		args = append(args, f.Date)
	}
	if f.OldestFirst {
		query += " ORDER BY o.created_at ASC, o.order_id ASC"
	} else {
		query += " ORDER BY o.created_at DESC, o.order_id DESC"
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	orders := []models.OrderSummary{}
	if err := sqlx.SelectContext(ctx, s.q, &orders, s.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrderItems retrieves the items of the given orders joined with menu data
func (s *Queries) ListOrderItems(ctx context.Context, orderIDs ...int64) ([]models.OrderItemDetail, error) {
	items := []models.OrderItemDetail{}
	if len(orderIDs) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(`
		SELECT oi.order_item_id, oi.order_id, oi.menu_id, oi.quantity, oi.unit_price,
			oi.subtotal, oi.customization, oi.item_status,
			m.item_name, m.category, m.price AS current_price
		FROM order_items oi
		JOIN menu m ON oi.menu_id = m.menu_id
		WHERE oi.order_id IN (?)
		ORDER BY oi.order_id, oi.order_item_id`, orderIDs)
	if err != nil {
		return nil, err
	}

	if err := sqlx.SelectContext(ctx, s.q, &items, s.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	return items, nil
}

// UpdateOrderStatus sets an order's status and returns the updated row
func (s *Queries) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	var order models.Order
	err := sqlx.GetContext(ctx, s.q, &order, `
		UPDATE orders SET order_status = $1
		WHERE order_id = $2
		RETURNING `+orderColumns, status, id)
	if err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// CompleteOrder marks an order as completed at the given time
func (s *Queries) CompleteOrder(ctx context.Context, id int64, completedAt time.Time) error {
	return expectAffected(s.q.ExecContext(ctx, `
		UPDATE orders SET order_status = $1, completed_at = $2
		WHERE order_id = $3`,
		models.OrderStatusCompleted, completedAt, id))
}

// UpdateOrderItemStatus sets the kitchen status of one order item
func (s *Queries) UpdateOrderItemStatus(ctx context.Context, orderID, itemID int64, status string) error {
	return expectAffected(s.q.ExecContext(ctx, `
		UPDATE order_items SET item_status = $1
		WHERE order_id = $2 AND order_item_id = $3`,
		status, orderID, itemID))
}

// SetTableStatus updates a restaurant table, reporting whether the table exists
func (s *Queries) SetTableStatus(ctx context.Context, tableNumber int, status string) (bool, error) {
	err := expectAffected(s.q.ExecContext(ctx,
		"UPDATE restaurant_tables SET status = $1 WHERE table_number = $2", status, tableNumber))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update table %d: %w", tableNumber, err)
	}
	return true, nil
}

// ListTables retrieves all restaurant tables
func (s *Queries) ListTables(ctx context.Context) ([]models.RestaurantTable, error) {
	tables := []models.RestaurantTable{}
	err := sqlx.SelectContext(ctx, s.q, &tables,
		"SELECT table_number, capacity, status FROM restaurant_tables ORDER BY table_number")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}
