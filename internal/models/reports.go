package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerStats aggregates a customer's completed orders
type CustomerStats struct {
	TotalOrders   int                 `db:"total_orders" json:"total_orders"`
	TotalSpent    decimal.Decimal     `db:"total_spent" json:"total_spent"`
	AvgOrderValue decimal.NullDecimal `db:"avg_order_value" json:"avg_order_value"`
	LastOrderDate *time.Time          `db:"last_order_date" json:"last_order_date"`
}

// CustomerOrder is a row of a customer's order history
type CustomerOrder struct {
	OrderID     int64           `db:"order_id" json:"order_id"`
	OrderToken  string          `db:"order_token" json:"order_token"`
	OrderType   string          `db:"order_type" json:"order_type"`
	OrderStatus string          `db:"order_status" json:"order_status"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	OrderDate   time.Time       `db:"order_date" json:"order_date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// PaymentDaySummary totals today's payments per method
type PaymentDaySummary struct {
	TotalTransactions int             `db:"total_transactions" json:"total_transactions"`
	TotalRevenue      decimal.Decimal `db:"total_revenue" json:"total_revenue"`
	CashTotal         decimal.Decimal `db:"cash_total" json:"cash_total"`
	CardTotal         decimal.Decimal `db:"card_total" json:"card_total"`
	UPITotal          decimal.Decimal `db:"upi_total" json:"upi_total"`
}

// Bill is a read-only view of an order's charges
type Bill struct {
	OrderID                 int64             `json:"order_id"`
	OrderToken              string            `json:"order_token"`
	OrderType               string            `json:"order_type"`
	OrderStatus             string            `json:"order_status"`
	TableNumber             *int              `json:"table_number"`
	CustomerName            *string           `json:"customer_name"`
	CustomerPhone           *string           `json:"customer_phone"`
	Items                   []OrderItemDetail `json:"items"`
	Subtotal                decimal.Decimal   `json:"subtotal"`
	GSTAmount               decimal.Decimal   `json:"gst_amount"`
	GSTPercentage           int               `json:"gst_percentage"`
	ServiceCharge           decimal.Decimal   `json:"service_charge"`
	ServiceChargePercentage int               `json:"service_charge_percentage"`
	TotalAmount             decimal.Decimal   `json:"total_amount"`
	OrderDate               string            `json:"order_date"`
}

// DailySales summarises completed orders of one day
type DailySales struct {
	TotalOrders     int                 `db:"total_orders" json:"total_orders"`
	TotalRevenue    decimal.Decimal     `db:"total_revenue" json:"total_revenue"`
	AvgOrderValue   decimal.NullDecimal `db:"avg_order_value" json:"avg_order_value"`
	DineInOrders    int                 `db:"dine_in_orders" json:"dine_in_orders"`
	TakeawayOrders  int                 `db:"takeaway_orders" json:"takeaway_orders"`
	DineInRevenue   decimal.Decimal     `db:"dine_in_revenue" json:"dine_in_revenue"`
	TakeawayRevenue decimal.Decimal     `db:"takeaway_revenue" json:"takeaway_revenue"`
}

// PopularItem is a menu item ranked by quantity sold
type PopularItem struct {
	MenuID        int64           `db:"menu_id" json:"menu_id"`
	ItemName      string          `db:"item_name" json:"item_name"`
	Category      string          `db:"category" json:"category"`
	Cuisine       string          `db:"cuisine" json:"cuisine"`
	Price         decimal.Decimal `db:"price" json:"price"`
	TimesOrdered  int             `db:"times_ordered" json:"times_ordered"`
	TotalQuantity int             `db:"total_quantity" json:"total_quantity"`
	TotalRevenue  decimal.Decimal `db:"total_revenue" json:"total_revenue"`
}

// CuisineRevenue aggregates sales per cuisine
type CuisineRevenue struct {
	Cuisine      string          `db:"cuisine" json:"cuisine"`
	OrderCount   int             `db:"order_count" json:"order_count"`
	ItemsSold    int             `db:"items_sold" json:"items_sold"`
	TotalRevenue decimal.Decimal `db:"total_revenue" json:"total_revenue"`
	AvgItemValue decimal.Decimal `db:"avg_item_value" json:"avg_item_value"`
}

// HourlySales aggregates completed orders per hour of day
type HourlySales struct {
	Hour       int             `db:"hour" json:"hour"`
	OrderCount int             `db:"order_count" json:"order_count"`
	Revenue    decimal.Decimal `db:"revenue" json:"revenue"`
}

// PaymentMethodBreakdown aggregates payments per method
type PaymentMethodBreakdown struct {
	PaymentMethod       string          `db:"payment_method" json:"payment_method"`
	TransactionCount    int             `db:"transaction_count" json:"transaction_count"`
	TotalAmount         decimal.Decimal `db:"total_amount" json:"total_amount"`
	AvgTransactionValue decimal.Decimal `db:"avg_transaction_value" json:"avg_transaction_value"`
}

// DaySales is one day of the weekly comparison
type DaySales struct {
	DayName string          `db:"day_name" json:"day_name"`
	Date    time.Time       `db:"date" json:"date"`
	Orders  int             `db:"orders" json:"orders"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

// StatusCount aggregates today's orders per status
type StatusCount struct {
	OrderStatus string          `db:"order_status" json:"order_status"`
	Count       int             `db:"count" json:"count"`
	TotalValue  decimal.Decimal `db:"total_value" json:"total_value"`
}
