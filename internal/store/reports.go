package store

import (
	"context"
	"fmt"

	"pos-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// Report queries only read committed data, so they run on the pool.

// DailySales summarises the completed orders of a day
func (s *Store) DailySales(ctx context.Context, day string) (*models.DailySales, error) {
	var sales models.DailySales
	err := sqlx.GetContext(ctx, s.db, &sales, `
		SELECT
			COUNT(DISTINCT o.order_id) AS total_orders,
			COALESCE(SUM(o.total_amount), 0) AS total_revenue,
			ROUND(AVG(o.total_amount), 2) AS avg_order_value,
			COUNT(CASE WHEN o.order_type = 'dine-in' THEN 1 END) AS dine_in_orders,
			COUNT(CASE WHEN o.order_type = 'takeaway' THEN 1 END) AS takeaway_orders,
			COALESCE(SUM(CASE WHEN o.order_type = 'dine-in' THEN o.total_amount ELSE 0 END), 0) AS dine_in_revenue,
			COALESCE(SUM(CASE WHEN o.order_type = 'takeaway' THEN o.total_amount ELSE 0 END), 0) AS takeaway_revenue
		FROM orders o
		WHERE o.order_date = $1::date AND o.order_status = 'completed'`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	return &sales, nil
}

// PopularItems ranks menu items by quantity sold between two dates
func (s *Store) PopularItems(ctx context.Context, start, end string, limit int) ([]models.PopularItem, error) {
	items := []models.PopularItem{}
	err := sqlx.SelectContext(ctx, s.db, &items, `
		SELECT
			m.menu_id,
			m.item_name,
			m.category,
			m.cuisine,
			m.price,
			COUNT(oi.order_item_id) AS times_ordered,
			SUM(oi.quantity) AS total_quantity,
			SUM(oi.subtotal) AS total_revenue
		FROM order_items oi
		JOIN menu m ON oi.menu_id = m.menu_id
		JOIN orders o ON oi.order_id = o.order_id
		WHERE o.order_date BETWEEN $1::date AND $2::date
			AND o.order_status = 'completed'
		GROUP BY m.menu_id, m.item_name, m.category, m.cuisine, m.price
		ORDER BY total_quantity DESC
		LIMIT $3`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular items: %w", err)
	}
	return items, nil
}

// RevenueByCuisine aggregates item sales per cuisine between two dates
func (s *Store) RevenueByCuisine(ctx context.Context, start, end string) ([]models.CuisineRevenue, error) {
	rows := []models.CuisineRevenue{}
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT
			m.cuisine,
			COUNT(DISTINCT oi.order_id) AS order_count,
			SUM(oi.quantity) AS items_sold,
			SUM(oi.subtotal) AS total_revenue,
			ROUND(AVG(oi.subtotal), 2) AS avg_item_value
		FROM order_items oi
		JOIN menu m ON oi.menu_id = m.menu_id
		JOIN orders o ON oi.order_id = o.order_id
		WHERE o.order_date BETWEEN $1::date AND $2::date
			AND o.order_status = 'completed'
		GROUP BY m.cuisine
		ORDER BY total_revenue DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by cuisine: %w", err)
	}
	return rows, nil
}

// PeakHours aggregates a day's completed orders per hour
func (s *Store) PeakHours(ctx context.Context, day string) ([]models.HourlySales, error) {
	rows := []models.HourlySales{}
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT
			EXTRACT(HOUR FROM created_at)::int AS hour,
			COUNT(*) AS order_count,
			SUM(total_amount) AS revenue
		FROM orders
		WHERE order_date = $1::date AND order_status = 'completed'
		GROUP BY 1
		ORDER BY hour`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query peak hours: %w", err)
	}
	return rows, nil
}

// PaymentMethods aggregates payments per method between two dates
func (s *Store) PaymentMethods(ctx context.Context, start, end string) ([]models.PaymentMethodBreakdown, error) {
	rows := []models.PaymentMethodBreakdown{}
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT
			payment_method,
			COUNT(*) AS transaction_count,
			SUM(total_amount) AS total_amount,
			ROUND(AVG(total_amount), 2) AS avg_transaction_value
		FROM payments
		WHERE DATE(payment_date) BETWEEN $1::date AND $2::date
		GROUP BY payment_method
		ORDER BY total_amount DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment methods: %w", err)
	}
	return rows, nil
}

// WeeklyComparison aggregates completed orders per day over the seven days before today
func (s *Store) WeeklyComparison(ctx context.Context, today string) ([]models.DaySales, error) {
	rows := []models.DaySales{}
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT
			TRIM(TO_CHAR(order_date, 'Day')) AS day_name,
			order_date AS date,
			COUNT(*) AS orders,
			SUM(total_amount) AS revenue
		FROM orders
		WHERE order_date >= $1::date - 7
			AND order_status = 'completed'
		GROUP BY order_date
		ORDER BY order_date`, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly comparison: %w", err)
	}
	return rows, nil
}

// OrderStatusSummary counts a day's orders per status
func (s *Store) OrderStatusSummary(ctx context.Context, day string) ([]models.StatusCount, error) {
	rows := []models.StatusCount{}
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT
			order_status,
			COUNT(*) AS count,
			SUM(total_amount) AS total_value
		FROM orders
		WHERE order_date = $1::date
		GROUP BY order_status
		ORDER BY order_status`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query order status summary: %w", err)
	}
	return rows, nil
}
