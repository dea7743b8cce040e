package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pos-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestHandleMessageRoutesByType(t *testing.T) {
	eh := NewEventHandler()

	var (
		settled   *models.PaymentSettledEvent
		cancelled *models.OrderCancelledEvent
	)
	eh.OnPaymentSettled(func(ctx context.Context, e *models.PaymentSettledEvent) error {
		settled = e
		return nil
	})
	eh.OnOrderCancelled(func(ctx context.Context, e *models.OrderCancelledEvent) error {
		cancelled = e
		return nil
	})

	err := eh.HandleMessage(context.Background(), message(t, &models.PaymentSettledEvent{
		BaseEvent:     models.BaseEvent{EventID: "e1", EventType: models.EventTypePaymentSettled, Timestamp: time.Now()},
		OrderID:       7,
		PaymentMethod: models.PaymentMethodCash,
		TotalAmount:   decimal.RequireFromString("210.00"),
		OrderDate:     "2024-03-10",
	}))
	require.NoError(t, err)
	require.NotNil(t, settled)
	assert.Equal(t, int64(7), settled.OrderID)
	assert.True(t, decimal.RequireFromString("210").Equal(settled.TotalAmount))
	assert.Nil(t, cancelled)

	table := 4
	err = eh.HandleMessage(context.Background(), message(t, &models.OrderCancelledEvent{
		BaseEvent:   models.BaseEvent{EventID: "e2", EventType: models.EventTypeOrderCancelled},
		OrderID:     8,
		TableNumber: &table,
	}))
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	require.NotNil(t, cancelled.TableNumber)
	assert.Equal(t, 4, *cancelled.TableNumber)
}

func TestHandleMessageIgnoresUnregisteredAndUnknown(t *testing.T) {
	eh := NewEventHandler()

	assert.NoError(t, eh.HandleMessage(context.Background(), message(t, &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderCreated},
	})))
	assert.NoError(t, eh.HandleMessage(context.Background(), message(t, &models.BaseEvent{EventType: "INVENTORY_RESERVED"})))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()
	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestOrderKey(t *testing.T) {
	assert.Equal(t, "order-42", orderKey(42))
}
