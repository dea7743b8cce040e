package service

import (
	"context"
	"time"

	"pos-service/internal/apperr"
	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService settles orders and serves payment reads
type PaymentService struct {
	store     DataStore
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService creates a new payment service. publisher may be nil.
func NewPaymentService(store DataStore, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// SettlePaymentResponse represents the response after settling an order
type SettlePaymentResponse struct {
	PaymentID      int64           `json:"payment_id"`
	OrderID        int64           `json:"order_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	ChangeReturned decimal.Decimal `json:"change_returned"`
}

// SettlePayment records the payment, completes the order, credits the
// customer and frees the table in one transaction
func (ps *PaymentService) SettlePayment(ctx context.Context, req *SettlePaymentRequest) (*SettlePaymentResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.SettlePayment")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PaymentSettlementLatency.Observe(time.Since(start).Seconds())
	}()

	if err := req.Validate(); err != nil {
		util.PaymentsRejectedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	var (
		payment *models.Payment
		order   *models.Order
	)
	err := ps.store.InTx(ctx, func(q store.Querier) error {
		var err error
		order, err = q.LockOrder(ctx, req.OrderID)
		if err != nil {
			return notFound(err, "Order not found")
		}
		if order.Status == models.OrderStatusCancelled {
			return apperr.Conflict("Cannot process payment for cancelled order")
		}

		paid, err := q.PaymentExists(ctx, order.ID)
		if err != nil {
			return err
		}
		if paid {
			return apperr.Conflict("Payment already processed for this order")
		}

		received := order.TotalAmount
		if req.AmountReceived != nil {
			received = req.AmountReceived.Round(2)
		}

		payment = &models.Payment{
			OrderID:        order.ID,
			Subtotal:       order.Subtotal,
			GSTAmount:      order.GSTAmount,
			ServiceCharge:  order.ServiceCharge,
			TotalAmount:    order.TotalAmount,
			PaymentMethod:  req.PaymentMethod,
			AmountReceived: received,
			ChangeReturned: ChangeDue(req.PaymentMethod, received, order.TotalAmount),
		}
		if err := q.CreatePayment(ctx, payment); err != nil {
			return err
		}

		if err := q.CompleteOrder(ctx, order.ID, ps.now()); err != nil {
			return err
		}
		if err := q.AddCustomerSpend(ctx, order.CustomerID, order.TotalAmount); err != nil {
			return notFound(err, "Customer not found")
		}

		if order.IsDineIn() {
			return setTableStatus(ctx, q, ps.logger, *order.TableNumber, models.TableStatusAvailable)
		}
		return nil
	})
	if err != nil {
		util.SpanError(span, err)
		util.PaymentsRejectedTotal.WithLabelValues(apperr.KindOf(err).String()).Inc()
		return nil, err
	}

	util.PaymentsSettledTotal.WithLabelValues(payment.PaymentMethod).Inc()
	ps.logger.Info("Payment settled",
		zap.Int64("order_id", order.ID),
		zap.Int64("payment_id", payment.ID),
		zap.String("payment_method", payment.PaymentMethod),
		zap.String("total_amount", payment.TotalAmount.StringFixed(2)))

	if ps.publisher != nil {
		event := &models.PaymentSettledEvent{
			BaseEvent:     newBaseEvent(models.EventTypePaymentSettled),
			OrderID:       order.ID,
			PaymentID:     payment.ID,
			PaymentMethod: payment.PaymentMethod,
			TotalAmount:   payment.TotalAmount,
			OrderDate:     order.OrderDate.Format(models.DateLayout),
		}
		if err := ps.publisher.PublishPaymentSettled(ctx, event); err != nil {
			ps.logger.Error("Failed to publish PaymentSettled event", zap.Error(err))
		}
	}

	return &SettlePaymentResponse{
		PaymentID:      payment.ID,
		OrderID:        order.ID,
		TotalAmount:    payment.TotalAmount,
		AmountReceived: payment.AmountReceived,
		ChangeReturned: payment.ChangeReturned,
	}, nil
}

// PaymentListParams are the optional filters of a payment listing
type PaymentListParams struct {
	Date          string
	PaymentMethod string
}

// ListPayments retrieves payments newest first
func (ps *PaymentService) ListPayments(ctx context.Context, params PaymentListParams) ([]models.PaymentSummary, error) {
	if params.Date != "" {
		if _, err := parseDate("date", params.Date); err != nil {
			return nil, err
		}
	}
	return ps.store.ListPayments(ctx, store.PaymentFilter{Date: params.Date, PaymentMethod: params.PaymentMethod})
}

// GetPayment retrieves a payment by ID
func (ps *PaymentService) GetPayment(ctx context.Context, paymentID int64) (*models.PaymentSummary, error) {
	payment, err := ps.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, notFound(err, "Payment not found")
	}
	return payment, nil
}

// GetPaymentByOrder retrieves the payment of an order
func (ps *PaymentService) GetPaymentByOrder(ctx context.Context, orderID int64) (*models.PaymentSummary, error) {
	payment, err := ps.store.GetPaymentByOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "Payment not found for this order")
	}
	return payment, nil
}

// Bill previews an order's charges without changing anything
func (ps *PaymentService) Bill(ctx context.Context, orderID int64) (*models.Bill, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.Bill")
	defer span.End()

	order, err := ps.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}
	items, err := ps.store.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &models.Bill{
		OrderID:                 order.ID,
		OrderToken:              order.Token,
		OrderType:               order.OrderType,
		OrderStatus:             order.Status,
		TableNumber:             order.TableNumber,
		CustomerName:            order.CustomerName,
		CustomerPhone:           order.CustomerPhone,
		Items:                   items,
		Subtotal:                order.Subtotal,
		GSTAmount:               order.GSTAmount,
		GSTPercentage:           GSTPercentage,
		ServiceCharge:           order.ServiceCharge,
		ServiceChargePercentage: serviceChargePercentage(order.OrderType),
		TotalAmount:             order.TotalAmount,
		OrderDate:               order.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// TodaySummary totals today's payments per method
func (ps *PaymentService) TodaySummary(ctx context.Context) (*models.PaymentDaySummary, error) {
	return ps.store.PaymentDaySummary(ctx, ps.now().Format(models.DateLayout))
}
