package store

import (
	"context"
	"time"

	"pos-service/internal/models"

	"github.com/shopspring/decimal"
)

// Querier is the statement set shared by the pool and transactions.
// Dates are passed as models.DateLayout strings.
type Querier interface {
	ListMenuItems(ctx context.Context, f MenuFilter) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	SetMenuAvailability(ctx context.Context, id int64, available bool) error
	DeleteMenuItem(ctx context.Context, id int64) error
	ListMenuCuisines(ctx context.Context) ([]string, error)
	ListMenuCategories(ctx context.Context) ([]string, error)

	ListCustomers(ctx context.Context, f CustomerFilter) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	AddCustomerSpend(ctx context.Context, customerID int64, amount decimal.Decimal) error
	ListCustomerOrders(ctx context.Context, customerID int64, limit int) ([]models.CustomerOrder, error)
	GetCustomerStats(ctx context.Context, customerID int64) (*models.CustomerStats, error)

	LatestOrderToken(ctx context.Context, orderDate, prefix string) (string, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	GetOrder(ctx context.Context, id int64) (*models.OrderSummary, error)
	LockOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.OrderSummary, error)
	ListOrderItems(ctx context.Context, orderIDs ...int64) ([]models.OrderItemDetail, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error)
	CompleteOrder(ctx context.Context, id int64, completedAt time.Time) error
	UpdateOrderItemStatus(ctx context.Context, orderID, itemID int64, status string) error
	SetTableStatus(ctx context.Context, tableNumber int, status string) (bool, error)
	ListTables(ctx context.Context) ([]models.RestaurantTable, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id int64) (*models.PaymentSummary, error)
	GetPaymentByOrder(ctx context.Context, orderID int64) (*models.PaymentSummary, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]models.PaymentSummary, error)
	PaymentExists(ctx context.Context, orderID int64) (bool, error)
	PaymentDaySummary(ctx context.Context, day string) (*models.PaymentDaySummary, error)
}

// MenuFilter narrows menu listings; zero values match everything
type MenuFilter struct {
	Cuisine   string
	Category  string
	Available *bool
}

// CustomerFilter narrows customer listings
type CustomerFilter struct {
	CustomerType string
	Search       string
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Statuses    []string
	OrderType   string
	Date        string
	OldestFirst bool
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	Date          string
	PaymentMethod string
}

var _ Querier = (*Queries)(nil)
