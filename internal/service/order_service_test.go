package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pos-service/internal/apperr"
	"pos-service/internal/models"
	"pos-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTakeawayOrder(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 2)))

	assertMoney(t, "200.00", resp.Subtotal)
	assertMoney(t, "10.00", resp.GSTAmount)
	assertMoney(t, "0", resp.ServiceCharge)
	assertMoney(t, "210.00", resp.TotalAmount)
	assert.Equal(t, "T-001", resp.OrderToken)

	order, err := env.orders.GetOrder(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, testDay, order.OrderDate.Format(models.DateLayout))
	assert.Nil(t, order.TableNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, models.ItemStatusPending, order.Items[0].ItemStatus)
	assertMoney(t, "200.00", order.Items[0].Subtotal)

	assert.Equal(t, []string{models.EventTypeOrderCreated}, env.publisher.Events())
}

func TestCreateDineInOrderOccupiesTable(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.mustCreate(t, env.dineIn(5, "Asha", "9999999999", item(env.curry.ID, 2)))

	assertMoney(t, "200.00", resp.Subtotal)
	assertMoney(t, "10.00", resp.GSTAmount)
	assertMoney(t, "20.00", resp.ServiceCharge)
	assertMoney(t, "230.00", resp.TotalAmount)
	assert.Equal(t, "D5-01", resp.OrderToken)

	table, ok := env.store.Table(5)
	require.True(t, ok)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
}

func TestTotalsAreExactDecimals(t *testing.T) {
	env := newTestEnv(t, false)

	// 3 x 45.50 = 136.50; gst 6.825 rounds to 6.83; service 13.65
	resp := env.mustCreate(t, env.dineIn(2, "Ravi", "8888888888", item(env.naan.ID, 3)))

	assertMoney(t, "136.50", resp.Subtotal)
	assertMoney(t, "6.83", resp.GSTAmount)
	assertMoney(t, "13.65", resp.ServiceCharge)
	assert.True(t, resp.TotalAmount.Equal(resp.Subtotal.Add(resp.GSTAmount).Add(resp.ServiceCharge)))
}

func TestTokenSequencesPerContext(t *testing.T) {
	env := newTestEnv(t, false)

	tokens := []string{
		env.mustCreate(t, env.takeaway("A", "1", item(env.curry.ID, 1))).OrderToken,
		env.mustCreate(t, env.takeaway("B", "2", item(env.curry.ID, 1))).OrderToken,
		env.mustCreate(t, env.dineIn(5, "C", "3", item(env.curry.ID, 1))).OrderToken,
		env.mustCreate(t, env.dineIn(5, "D", "4", item(env.curry.ID, 1))).OrderToken,
		env.mustCreate(t, env.dineIn(3, "E", "5", item(env.curry.ID, 1))).OrderToken,
		env.mustCreate(t, env.takeaway("F", "6", item(env.curry.ID, 1))).OrderToken,
	}

	assert.Equal(t, []string{"T-001", "T-002", "D5-01", "D5-02", "D3-01", "T-003"}, tokens)
}

func TestTokenSequenceRestartsEachDay(t *testing.T) {
	env := newTestEnv(t, false)

	assert.Equal(t, "T-001", env.mustCreate(t, env.takeaway("A", "1", item(env.curry.ID, 1))).OrderToken)

	env.orders.now = func() time.Time { return testNow.AddDate(0, 0, 1) }
	assert.Equal(t, "T-001", env.mustCreate(t, env.takeaway("A", "1", item(env.curry.ID, 1))).OrderToken)
}

func TestFallbackTokenWhenLookupFails(t *testing.T) {
	env := newTestEnv(t, false)
	env.store.Fail("LatestOrderToken", errors.New("connection refused"), 1)

	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))

	assert.Regexp(t, `^ORD-\d{4}$`, resp.OrderToken)
	assert.Equal(t, 1, env.store.Count("orders"))
}

func TestFallbackTokenWhenSuffixUnparsable(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	customer := &models.Customer{Name: "Legacy", Phone: "7", CustomerType: models.CustomerTypeRegular}
	require.NoError(t, env.store.CreateCustomer(ctx, customer))
	require.NoError(t, env.store.CreateOrder(ctx, &models.Order{
		Token:      "T-legacy",
		CustomerID: customer.ID,
		OrderType:  models.OrderTypeTakeaway,
		Status:     models.OrderStatusPending,
		OrderDate:  testNow,
	}))

	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))
	assert.Regexp(t, `^ORD-\d{4}$`, resp.OrderToken)
}

func TestTokenCollisionIsRetried(t *testing.T) {
	env := newTestEnv(t, false)
	env.store.Fail("CreateOrder", store.ErrTokenTaken, 2)

	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))

	assert.Equal(t, "T-001", resp.OrderToken)
	assert.Equal(t, 1, env.store.Count("orders"))
	assert.Equal(t, 1, env.store.Count("customers"))
}

func TestTokenCollisionGivesUpAfterRetries(t *testing.T) {
	env := newTestEnv(t, false)
	env.store.Fail("CreateOrder", store.ErrTokenTaken, 4)

	_, err := env.orders.CreateOrder(context.Background(), env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 0, env.store.Count("orders"))
	assert.Equal(t, 0, env.store.Count("customers"))
}

func TestDineInWithoutTableWritesNothing(t *testing.T) {
	env := newTestEnv(t, false)

	req := env.takeaway("Asha", "9999999999", item(env.curry.ID, 1))
	req.OrderType = models.OrderTypeDineIn

	_, err := env.orders.CreateOrder(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 0, env.store.Count("customers"))
	assert.Equal(t, 0, env.store.Count("orders"))
	assert.Equal(t, 0, env.store.Commits())
}

func TestUnknownMenuItemRollsBackNewCustomer(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.orders.CreateOrder(context.Background(),
		env.takeaway("Asha", "9999999999", item(env.curry.ID, 1), item(9999, 1)))

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Menu item 9999 not found", apperr.PublicMessage(err))
	assert.Equal(t, 0, env.store.Count("customers"))
	assert.Equal(t, 0, env.store.Count("orders"))
	assert.Equal(t, 0, env.store.Count("order_items"))
}

func TestItemInsertFailureRollsBackEverything(t *testing.T) {
	env := newTestEnv(t, false)
	env.store.Fail("CreateOrderItem", errors.New("disk full"), 1)

	_, err := env.orders.CreateOrder(context.Background(),
		env.dineIn(4, "Asha", "9999999999", item(env.curry.ID, 1)))

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, 0, env.store.Count("customers"))
	assert.Equal(t, 0, env.store.Count("orders"))

	table, _ := env.store.Table(4)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
}

func TestExistingCustomerIsReusedByPhone(t *testing.T) {
	env := newTestEnv(t, false)

	first := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))
	second := env.mustCreate(t, env.takeaway("Asha K", "9999999999", item(env.naan.ID, 1)))

	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.Equal(t, 1, env.store.Count("customers"))

	customer, err := env.store.GetCustomer(context.Background(), first.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 0, customer.TotalOrders)
	assertMoney(t, "0", customer.TotalSpent)
}

func TestUnitPriceSnapshotSurvivesMenuChange(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 2)))

	updated := env.curry
	updated.Price = decimal.RequireFromString("150.00")
	require.NoError(t, env.store.UpdateMenuItem(ctx, &updated))

	order, err := env.orders.GetOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assertMoney(t, "100.00", order.Items[0].UnitPrice)
	assertMoney(t, "150.00", order.Items[0].CurrentPrice)
	assertMoney(t, "210.00", order.TotalAmount)
}

func TestIdempotencyKeyReturnsFirstResult(t *testing.T) {
	env := newTestEnv(t, true)

	req := env.takeaway("Asha", "9999999999", item(env.curry.ID, 1))
	req.IdempotencyKey = "retry-1"
	first := env.mustCreate(t, req)

	again := env.takeaway("Asha", "9999999999", item(env.curry.ID, 1))
	again.IdempotencyKey = "retry-1"
	second := env.mustCreate(t, again)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.OrderToken, second.OrderToken)
	assertMoney(t, first.TotalAmount.String(), second.TotalAmount)
	assert.Equal(t, 1, env.store.Count("orders"))
}

func TestTokenLockIsHeldAndReleased(t *testing.T) {
	env := newTestEnv(t, true)

	env.mustCreate(t, env.dineIn(7, "Asha", "9999999999", item(env.curry.ID, 1)))

	assert.Equal(t, []string{"lock:order-token:" + testDay + ":D7-"}, env.cache.acquired)
	assert.Equal(t, env.cache.acquired, env.cache.released)
}

func TestBusyTokenLockFallsBackToConstraint(t *testing.T) {
	env := newTestEnv(t, true)
	env.orders.cfg.TokenLockTTL = 50 * time.Millisecond

	_, ok, err := env.cache.AcquireLock(context.Background(), "lock:order-token:"+testDay+":T-", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))
	assert.Equal(t, "T-001", resp.OrderToken)
}

func TestCancelOrderIsIdempotentAndFreesTable(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	resp := env.mustCreate(t, env.dineIn(5, "Asha", "9999999999", item(env.curry.ID, 1)))

	require.NoError(t, env.orders.CancelOrder(ctx, resp.OrderID))
	require.NoError(t, env.orders.CancelOrder(ctx, resp.OrderID))

	order, err := env.orders.GetOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	table, _ := env.store.Table(5)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
}

func TestCancelOrderKeepsTableOfNextParty(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	first := env.mustCreate(t, env.dineIn(5, "Asha", "9999999999", item(env.curry.ID, 1)))
	require.NoError(t, env.orders.CancelOrder(ctx, first.OrderID))

	second := env.mustCreate(t, env.dineIn(5, "Ravi", "8888888888", item(env.naan.ID, 1)))
	require.NoError(t, env.orders.CancelOrder(ctx, first.OrderID))

	table, _ := env.store.Table(5)
	assert.Equal(t, models.TableStatusOccupied, table.Status)

	order, err := env.orders.GetOrder(ctx, second.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, env.publisher.Events(), 3, "created, cancelled, created")
}

func TestCancelCompletedOrderConflicts(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	paid := env.mustCreate(t, env.dineIn(5, "Asha", "9999999999", item(env.curry.ID, 2)))
	_, err := env.payments.SettlePayment(ctx, &SettlePaymentRequest{OrderID: paid.OrderID, PaymentMethod: models.PaymentMethodCard})
	require.NoError(t, err)

	next := env.mustCreate(t, env.dineIn(5, "Ravi", "8888888888", item(env.naan.ID, 1)))

	err = env.orders.CancelOrder(ctx, paid.OrderID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Cannot cancel a completed order", apperr.PublicMessage(err))

	order, err := env.orders.GetOrder(ctx, paid.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	table, _ := env.store.Table(5)
	assert.Equal(t, models.TableStatusOccupied, table.Status)

	_, err = env.orders.GetOrder(ctx, next.OrderID)
	require.NoError(t, err)
}

func TestCancelUnknownOrder(t *testing.T) {
	env := newTestEnv(t, false)

	err := env.orders.CancelOrder(context.Background(), 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))

	_, err := env.orders.UpdateOrderStatus(ctx, resp.OrderID, &UpdateOrderStatusRequest{OrderStatus: "eaten"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.orders.UpdateOrderStatus(ctx, 404, &UpdateOrderStatusRequest{OrderStatus: models.OrderStatusReady})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	order, err := env.orders.UpdateOrderStatus(ctx, resp.OrderID, &UpdateOrderStatusRequest{OrderStatus: models.OrderStatusPreparing})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.Contains(t, env.publisher.Events(), models.EventTypeOrderStatusChanged)
}

func TestUpdateOrderItemStatus(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	resp := env.mustCreate(t, env.takeaway("Asha", "9999999999", item(env.curry.ID, 1)))

	order, err := env.orders.GetOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	itemID := order.Items[0].ID

	require.NoError(t, env.orders.UpdateOrderItemStatus(ctx, resp.OrderID, itemID,
		&UpdateItemStatusRequest{ItemStatus: models.ItemStatusServed}))

	order, err = env.orders.GetOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusServed, order.Items[0].ItemStatus)

	err = env.orders.UpdateOrderItemStatus(ctx, resp.OrderID+1, itemID,
		&UpdateItemStatusRequest{ItemStatus: models.ItemStatusReady})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = env.orders.UpdateOrderItemStatus(ctx, resp.OrderID, itemID,
		&UpdateItemStatusRequest{ItemStatus: "burnt"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestActiveOrdersOldestFirstWithItems(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	first := env.mustCreate(t, env.takeaway("A", "1", item(env.curry.ID, 1), item(env.naan.ID, 2)))
	done := env.mustCreate(t, env.takeaway("B", "2", item(env.curry.ID, 1)))
	last := env.mustCreate(t, env.dineIn(2, "C", "3", item(env.naan.ID, 1)))
	require.NoError(t, env.orders.CancelOrder(ctx, done.OrderID))

	active, err := env.orders.ActiveOrders(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, first.OrderID, active[0].ID)
	assert.Equal(t, last.OrderID, active[1].ID)
	assert.Len(t, active[0].Items, 2)
	assert.Equal(t, "Garlic Naan", active[1].Items[0].ItemName)
}

func TestListOrdersFilters(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	env.mustCreate(t, env.takeaway("A", "1", item(env.curry.ID, 1)))
	dine := env.mustCreate(t, env.dineIn(2, "B", "2", item(env.curry.ID, 1)))

	orders, err := env.orders.ListOrders(ctx, OrderListParams{OrderType: models.OrderTypeDineIn, Date: testDay})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, dine.OrderID, orders[0].ID)
	require.NotNil(t, orders[0].CustomerName)
	assert.Equal(t, "B", *orders[0].CustomerName)

	_, err = env.orders.ListOrders(ctx, OrderListParams{Date: "10/03/2024"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
