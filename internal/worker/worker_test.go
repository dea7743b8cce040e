package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pos-service/internal/models"
	"pos-service/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvalidator struct {
	prefixes []string
	err      error
}

func (f *fakeInvalidator) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.prefixes = append(f.prefixes, prefix)
	return 3, nil
}

func eventMessage(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestReportCacheWorkerInvalidatesOnDomainEvents(t *testing.T) {
	cache := &fakeInvalidator{}
	w := NewReportCacheWorker(nil, cache)
	ctx := context.Background()

	events := []interface{}{
		&models.OrderCreatedEvent{BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderCreated}, OrderID: 1},
		&models.OrderStatusChangedEvent{BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderStatusChanged}, OrderID: 1},
		&models.OrderCancelledEvent{BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderCancelled}, OrderID: 1},
		&models.PaymentSettledEvent{BaseEvent: models.BaseEvent{EventType: models.EventTypePaymentSettled}, OrderID: 2},
	}
	for _, e := range events {
		require.NoError(t, w.eventHandler.HandleMessage(ctx, eventMessage(t, e)))
	}

	assert.Len(t, cache.prefixes, 4)
	for _, p := range cache.prefixes {
		assert.Equal(t, service.ReportCachePrefix, p)
	}
}

func TestReportCacheWorkerSurfacesCacheErrors(t *testing.T) {
	w := NewReportCacheWorker(nil, &fakeInvalidator{err: errors.New("redis down")})

	err := w.eventHandler.HandleMessage(context.Background(), eventMessage(t,
		&models.PaymentSettledEvent{BaseEvent: models.BaseEvent{EventType: models.EventTypePaymentSettled}}))
	assert.Error(t, err)
}
