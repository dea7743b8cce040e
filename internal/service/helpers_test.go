package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/store/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 13, 45, 0, 0, time.Local)

const testDay = "2024-03-10"

type testEnv struct {
	store     *memstore.Store
	cache     *fakeCache
	publisher *recordingPublisher
	orders    *OrderService
	payments  *PaymentService
	curry     models.MenuItem
	naan      models.MenuItem
}

// newTestEnv seeds a menu and twelve tables; the cache is left out unless withCache is set
func newTestEnv(t *testing.T, withCache bool) *testEnv {
	t.Helper()

	st := memstore.New()
	st.SetClock(func() time.Time { return testNow })
	for n := 1; n <= 12; n++ {
		st.AddTable(n, 4)
	}

	env := &testEnv{
		store:     st,
		publisher: &recordingPublisher{},
		curry:     st.AddMenuItem("Paneer Butter Masala", "Main Course", "North Indian", "100.00"),
		naan:      st.AddMenuItem("Garlic Naan", "Breads", "North Indian", "45.50"),
	}

	var cache Cache
	if withCache {
		env.cache = newFakeCache()
		cache = env.cache
	}

	env.orders = NewOrderService(st, cache, env.publisher, OrderConfig{
		TokenRetries:   3,
		TokenLockTTL:   time.Second,
		IdempotencyTTL: time.Minute,
	})
	env.orders.now = func() time.Time { return testNow }

	env.payments = NewPaymentService(st, env.publisher)
	env.payments.now = func() time.Time { return testNow }

	return env
}

func (e *testEnv) takeaway(name, phone string, items ...OrderItemRequest) *CreateOrderRequest {
	return &CreateOrderRequest{
		Customer:  CustomerInfo{Name: name, Phone: phone},
		OrderType: models.OrderTypeTakeaway,
		Items:     items,
	}
}

func (e *testEnv) dineIn(table int, name, phone string, items ...OrderItemRequest) *CreateOrderRequest {
	return &CreateOrderRequest{
		Customer:    CustomerInfo{Name: name, Phone: phone},
		OrderType:   models.OrderTypeDineIn,
		TableNumber: &table,
		Items:       items,
	}
}

func (e *testEnv) mustCreate(t *testing.T, req *CreateOrderRequest) *CreateOrderResponse {
	t.Helper()
	resp, err := e.orders.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func item(menuID int64, quantity int) OrderItemRequest {
	return OrderItemRequest{MenuID: menuID, Quantity: quantity}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

type fakeLock struct {
	owner string
}

// fakeCache is an in-process Cache that round-trips values through JSON like Redis does
type fakeCache struct {
	mu       sync.Mutex
	values   map[string][]byte
	locks    map[string]fakeLock
	acquired []string
	released []string
	sets     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}, locks: map[string]fakeLock{}}
}

func (c *fakeCache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.locks[key]; held {
		return "", false, nil
	}
	owner := "owner-" + key
	c.locks[key] = fakeLock{owner: owner}
	c.acquired = append(c.acquired, key)
	return owner, true, nil
}

func (c *fakeCache) ReleaseLock(ctx context.Context, key, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, held := c.locks[key]; held && l.owner == owner {
		delete(c.locks, key)
		c.released = append(c.released, key)
	}
	return nil
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	raw, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = raw
	c.sets++
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) record(eventType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return p.record(event.EventType)
}

func (p *recordingPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return p.record(event.EventType)
}

func (p *recordingPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	return p.record(event.EventType)
}

func (p *recordingPublisher) PublishPaymentSettled(ctx context.Context, event *models.PaymentSettledEvent) error {
	return p.record(event.EventType)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
