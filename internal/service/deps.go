package service

import (
	"context"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/store"
)

// DataStore is the statement set plus transactions, satisfied by
// *store.Store and the in-memory test store
type DataStore interface {
	store.Querier
	InTx(ctx context.Context, fn func(q store.Querier) error) error
}

// ReportStore runs the sales aggregations
type ReportStore interface {
	DailySales(ctx context.Context, day string) (*models.DailySales, error)
	PopularItems(ctx context.Context, start, end string, limit int) ([]models.PopularItem, error)
	RevenueByCuisine(ctx context.Context, start, end string) ([]models.CuisineRevenue, error)
	PeakHours(ctx context.Context, day string) ([]models.HourlySales, error)
	PaymentMethods(ctx context.Context, start, end string) ([]models.PaymentMethodBreakdown, error)
	WeeklyComparison(ctx context.Context, today string) ([]models.DaySales, error)
	OrderStatusSummary(ctx context.Context, day string) ([]models.StatusCount, error)
}

// Cache holds token locks, idempotent responses and cached reports.
// A nil Cache disables all three.
type Cache interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (owner string, ok bool, err error)
	ReleaseLock(ctx context.Context, key, owner string) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// EventPublisher emits domain events after commit. A nil publisher disables events.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
	PublishPaymentSettled(ctx context.Context, event *models.PaymentSettledEvent) error
}
