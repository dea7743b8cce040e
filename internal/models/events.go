package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderCancelled     = "ORDER_CANCELLED"
	EventTypePaymentSettled     = "PAYMENT_SETTLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after an order commits
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderToken  string          `json:"order_token"`
	OrderType   string          `json:"order_type"`
	TableNumber *int            `json:"table_number,omitempty"`
	OrderDate   string          `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent published when the kitchen moves an order along
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	Status    string `json:"status"`
	OrderDate string `json:"order_date"`
}

// OrderCancelledEvent published when an order is cancelled
type OrderCancelledEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	TableNumber *int   `json:"table_number,omitempty"`
	OrderDate   string `json:"order_date"`
}

// PaymentSettledEvent published after a payment commits
type PaymentSettledEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	PaymentID     int64           `json:"payment_id"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	OrderDate     string          `json:"order_date"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	MenuID    int64           `json:"menu_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
