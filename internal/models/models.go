package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is rendered as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// MenuItem represents a dish on the menu
type MenuItem struct {
	ID              int64           `db:"menu_id" json:"menu_id"`
	Name            string          `db:"item_name" json:"item_name"`
	Description     *string         `db:"description" json:"description"`
	Category        string          `db:"category" json:"category"`
	Cuisine         string          `db:"cuisine" json:"cuisine"`
	Price           decimal.Decimal `db:"price" json:"price"`
	PreparationTime *int            `db:"preparation_time" json:"preparation_time"`
	IsAvailable     bool            `db:"is_available" json:"is_available"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Customer represents a guest, deduplicated by phone
type Customer struct {
	ID           int64           `db:"customer_id" json:"customer_id"`
	Name         string          `db:"name" json:"name"`
	Phone        string          `db:"phone" json:"phone"`
	Email        *string         `db:"email" json:"email"`
	CustomerType string          `db:"customer_type" json:"customer_type"`
	TotalOrders  int             `db:"total_orders" json:"total_orders"`
	TotalSpent   decimal.Decimal `db:"total_spent" json:"total_spent"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Order represents a placed order with its computed bill
type Order struct {
	ID                  int64           `db:"order_id" json:"order_id"`
	Token               string          `db:"order_token" json:"order_token"`
	CustomerID          int64           `db:"customer_id" json:"customer_id"`
	OrderType           string          `db:"order_type" json:"order_type"`
	TableNumber         *int            `db:"table_number" json:"table_number"`
	Status              string          `db:"order_status" json:"order_status"`
	SpecialInstructions *string         `db:"special_instructions" json:"special_instructions"`
	Subtotal            decimal.Decimal `db:"subtotal" json:"subtotal"`
	GSTAmount           decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	ServiceCharge       decimal.Decimal `db:"service_charge" json:"service_charge"`
	TotalAmount         decimal.Decimal `db:"total_amount" json:"total_amount"`
	OrderDate           time.Time       `db:"order_date" json:"order_date"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	CompletedAt         *time.Time      `db:"completed_at" json:"completed_at"`
}

// IsDineIn reports whether the order occupies a table
func (o *Order) IsDineIn() bool {
	return o.OrderType == OrderTypeDineIn && o.TableNumber != nil
}

// OrderSummary is an order joined with its customer's contact details
type OrderSummary struct {
	Order
	CustomerName  *string `db:"customer_name" json:"customer_name"`
	CustomerPhone *string `db:"customer_phone" json:"customer_phone"`
}

// OrderDetail is an order summary with its line items
type OrderDetail struct {
	OrderSummary
	Items []OrderItemDetail `json:"items"`
}

// OrderItem represents a line of an order. UnitPrice is the menu price at order time.
type OrderItem struct {
	ID            int64           `db:"order_item_id" json:"order_item_id"`
	OrderID       int64           `db:"order_id" json:"order_id"`
	MenuID        int64           `db:"menu_id" json:"menu_id"`
	Quantity      int             `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Customization *string         `db:"customization" json:"customization"`
	ItemStatus    string          `db:"item_status" json:"item_status"`
}

// OrderItemDetail is an order item joined with menu data
type OrderItemDetail struct {
	OrderItem
	ItemName     string          `db:"item_name" json:"item_name"`
	Category     string          `db:"category" json:"category"`
	CurrentPrice decimal.Decimal `db:"current_price" json:"current_price"`
}

// Payment represents the settlement of an order
type Payment struct {
	ID             int64           `db:"payment_id" json:"payment_id"`
	OrderID        int64           `db:"order_id" json:"order_id"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	GSTAmount      decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	ServiceCharge  decimal.Decimal `db:"service_charge" json:"service_charge"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
	AmountReceived decimal.Decimal `db:"amount_received" json:"amount_received"`
	ChangeReturned decimal.Decimal `db:"change_returned" json:"change_returned"`
	PaymentDate    time.Time       `db:"payment_date" json:"payment_date"`
}

// PaymentSummary is a payment joined with its order token and customer
type PaymentSummary struct {
	Payment
	OrderToken    string  `db:"order_token" json:"order_token"`
	CustomerName  *string `db:"customer_name" json:"customer_name"`
	CustomerPhone *string `db:"customer_phone" json:"customer_phone"`
}

// RestaurantTable represents a physical table
type RestaurantTable struct {
	TableNumber int    `db:"table_number" json:"table_number"`
	Capacity    int    `db:"capacity" json:"capacity"`
	Status      string `db:"status" json:"status"`
}

// Order types
const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeaway = "takeaway"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Item statuses
const (
	ItemStatusPending   = "pending"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusServed    = "served"
)

// Payment methods
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
)

// Customer types
const (
	CustomerTypeRegular   = "regular"
	CustomerTypeVIP       = "vip"
	CustomerTypeCorporate = "corporate"
)

// Table statuses
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
)

// ActiveOrderStatuses are the statuses shown on the kitchen display
var ActiveOrderStatuses = []string{OrderStatusPending, OrderStatusPreparing, OrderStatusReady}

// DateLayout is the calendar-date format used in queries and JSON
const DateLayout = "2006-01-02"
