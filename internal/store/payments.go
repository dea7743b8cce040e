package store

import (
	"context"
	"fmt"

	"pos-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const paymentSummaryColumns = `p.payment_id, p.order_id, p.subtotal, p.gst_amount, p.service_charge,
	p.total_amount, p.payment_method, p.amount_received, p.change_returned, p.payment_date,
	o.order_token, c.name AS customer_name, c.phone AS customer_phone`

const paymentSummaryFrom = `
	FROM payments p
	JOIN orders o ON p.order_id = o.order_id
	LEFT JOIN customers c ON o.customer_id = c.customer_id`

// CreatePayment creates a new payment record
func (s *Queries) CreatePayment(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, subtotal, gst_amount, service_charge, total_amount,
			payment_method, amount_received, change_returned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING payment_id, payment_date`

	row := s.q.QueryRowxContext(ctx, query,
		p.OrderID, p.Subtotal, p.GSTAmount, p.ServiceCharge, p.TotalAmount,
		p.PaymentMethod, p.AmountReceived, p.ChangeReturned)
	return classify(row.Scan(&p.ID, &p.PaymentDate))
}

// GetPayment retrieves a payment by ID
func (s *Queries) GetPayment(ctx context.Context, id int64) (*models.PaymentSummary, error) {
	var p models.PaymentSummary
	err := sqlx.GetContext(ctx, s.q, &p,
		"SELECT "+paymentSummaryColumns+paymentSummaryFrom+" WHERE p.payment_id = $1", id)
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// GetPaymentByOrder retrieves the payment of an order
func (s *Queries) GetPaymentByOrder(ctx context.Context, orderID int64) (*models.PaymentSummary, error) {
	var p models.PaymentSummary
	err := sqlx.GetContext(ctx, s.q, &p,
		"SELECT "+paymentSummaryColumns+paymentSummaryFrom+" WHERE p.order_id = $1", orderID)
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// ListPayments retrieves payments, newest first
func (s *Queries) ListPayments(ctx context.Context, f PaymentFilter) ([]models.PaymentSummary, error) {
	query := "SELECT " + paymentSummaryColumns + paymentSummaryFrom + " WHERE 1=1"
	var args []interface{}

	if f.Date != "" {
		query += " AND DATE(p.payment_date) = ?::date"
		args = append(args, f.Date)
	}
	if f.PaymentMethod != "" {
		query += " AND p.payment_method = ?"
		args = append(args, f.PaymentMethod)
	}
	query += " ORDER BY p.payment_date DESC"

	payments := []models.PaymentSummary{}
	if err := sqlx.SelectContext(ctx, s.q, &payments, s.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// PaymentExists reports whether an order already has a payment
func (s *Queries) PaymentExists(ctx context.Context, orderID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, s.q, &exists,
		"SELECT EXISTS(SELECT 1 FROM payments WHERE order_id = $1)", orderID)
	if err != nil {
		return false, fmt.Errorf("failed to check payment: %w", err)
	}
	return exists, nil
}

// PaymentDaySummary totals the payments received on a day
func (s *Queries) PaymentDaySummary(ctx context.Context, day string) (*models.PaymentDaySummary, error) {
	var summary models.PaymentDaySummary
	err := sqlx.GetContext(ctx, s.q, &summary, `
		SELECT
			COUNT(*) AS total_transactions,
			COALESCE(SUM(total_amount), 0) AS total_revenue,
			COALESCE(SUM(CASE WHEN payment_method = 'cash' THEN total_amount ELSE 0 END), 0) AS cash_total,
			COALESCE(SUM(CASE WHEN payment_method = 'card' THEN total_amount ELSE 0 END), 0) AS card_total,
			COALESCE(SUM(CASE WHEN payment_method = 'upi' THEN total_amount ELSE 0 END), 0) AS upi_total
		FROM payments
		WHERE DATE(payment_date) = $1::date`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise payments: %w", err)
	}
	return &summary, nil
}
