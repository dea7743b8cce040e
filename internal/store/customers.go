package store

import (
	"context"
	"fmt"
	"strings"

	"pos-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// likeEscaper makes a search term match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

const customerColumns = `customer_id, name, phone, email, customer_type,
	total_orders, total_spent, created_at`

// ListCustomers retrieves customers, newest first
func (s *Queries) ListCustomers(ctx context.Context, f CustomerFilter) ([]models.Customer, error) {
	query := "SELECT " + customerColumns + " FROM customers WHERE 1=1"
	var args []interface{}

	if f.CustomerType != "" {
		query += " AND customer_type = ?"
		args = append(args, f.CustomerType)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		query += " AND (name ILIKE ? OR phone ILIKE ?)"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY created_at DESC"

	customers := []models.Customer{}
	if err := sqlx.SelectContext(ctx, s.q, &customers, s.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// GetCustomer retrieves a customer by ID
func (s *Queries) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	err := sqlx.GetContext(ctx, s.q, &c, "SELECT "+customerColumns+" FROM customers WHERE customer_id = $1", id)
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

// GetCustomerByPhone retrieves a customer by exact phone number
func (s *Queries) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var c models.Customer
	err := sqlx.GetContext(ctx, s.q, &c, "SELECT "+customerColumns+" FROM customers WHERE phone = $1", phone)
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

// CreateCustomer inserts a customer and fills its generated fields
func (s *Queries) CreateCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, phone, email, customer_type)
		VALUES ($1, $2, $3, $4)
		RETURNING customer_id, total_orders, total_spent, created_at`

	row := s.q.QueryRowxContext(ctx, query, c.Name, c.Phone, c.Email, c.CustomerType)
	return classify(row.Scan(&c.ID, &c.TotalOrders, &c.TotalSpent, &c.CreatedAt))
}

// UpdateCustomer replaces the contact fields of a customer
func (s *Queries) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return expectAffected(s.q.ExecContext(ctx, `
		UPDATE customers
		SET name = $1, phone = $2, email = $3, customer_type = $4
		WHERE customer_id = $5`,
		c.Name, c.Phone, c.Email, c.CustomerType, c.ID))
}

// DeleteCustomer removes a customer without orders
func (s *Queries) DeleteCustomer(ctx context.Context, id int64) error {
	return expectAffected(s.q.ExecContext(ctx, "DELETE FROM customers WHERE customer_id = $1", id))
}

// AddCustomerSpend records one settled order against a customer
func (s *Queries) AddCustomerSpend(ctx context.Context, customerID int64, amount decimal.Decimal) error {
	return expectAffected(s.q.ExecContext(ctx, `
		UPDATE customers
		SET total_orders = total_orders + 1, total_spent = total_spent + $1
		WHERE customer_id = $2`,
		amount, customerID))
}

// ListCustomerOrders retrieves the latest orders of a customer
func (s *Queries) ListCustomerOrders(ctx context.Context, customerID int64, limit int) ([]models.CustomerOrder, error) {
	orders := []models.CustomerOrder{}
	err := sqlx.SelectContext(ctx, s.q, &orders, `
		SELECT order_id, order_token, order_type, order_status, total_amount, order_date, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	return orders, nil
}

// GetCustomerStats aggregates a customer's completed orders
func (s *Queries) GetCustomerStats(ctx context.Context, customerID int64) (*models.CustomerStats, error) {
	var stats models.CustomerStats
	err := sqlx.GetContext(ctx, s.q, &stats, `
		SELECT
			COUNT(*) AS total_orders,
			COALESCE(SUM(total_amount), 0) AS total_spent,
			ROUND(AVG(total_amount), 2) AS avg_order_value,
			MAX(created_at) AS last_order_date
		FROM orders
		WHERE customer_id = $1 AND order_status = 'completed'`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}
	return &stats, nil
}
