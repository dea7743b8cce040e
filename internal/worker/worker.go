package worker

import (
	"context"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// Invalidator drops cached keys by prefix
type Invalidator interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// ReportCacheWorker clears cached reports whenever an event changes the
// numbers they aggregate
type ReportCacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        Invalidator
	logger       *zap.Logger
}

// NewReportCacheWorker creates a new report cache worker
func NewReportCacheWorker(consumer *broker.Consumer, cache Invalidator) *ReportCacheWorker {
	w := &ReportCacheWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(func(ctx context.Context, e *models.OrderCreatedEvent) error {
		return w.invalidate(ctx, e.EventType)
	})
	eventHandler.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		return w.invalidate(ctx, e.EventType)
	})
	eventHandler.OnOrderCancelled(func(ctx context.Context, e *models.OrderCancelledEvent) error {
		return w.invalidate(ctx, e.EventType)
	})
	eventHandler.OnPaymentSettled(func(ctx context.Context, e *models.PaymentSettledEvent) error {
		return w.invalidate(ctx, e.EventType)
	})
	w.eventHandler = eventHandler

	return w
}

func (w *ReportCacheWorker) invalidate(ctx context.Context, eventType string) error {
	n, err := w.cache.DeletePrefix(ctx, service.ReportCachePrefix)
	if err != nil {
		return err
	}
	util.ReportCacheInvalidationsTotal.WithLabelValues(eventType).Inc()
	w.logger.Debug("Report cache invalidated",
		zap.String("event_type", eventType),
		zap.Int("keys", n))
	return nil
}

// Start consumes events until ctx is done
func (w *ReportCacheWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting report cache worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ReportCacheWorker) Stop() error {
	w.logger.Info("Stopping report cache worker")
	return w.consumer.Close()
}
