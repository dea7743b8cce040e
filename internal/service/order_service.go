package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/apperr"
	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const lockPollInterval = 25 * time.Millisecond

// OrderConfig tunes order creation
type OrderConfig struct {
	// TokenRetries is how many times a token collision reruns the transaction
	TokenRetries   int
	TokenLockTTL   time.Duration
	IdempotencyTTL time.Duration
}

// OrderService handles order business logic
type OrderService struct {
	store     DataStore
	cache     Cache
	publisher EventPublisher
	cfg       OrderConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service. cache and publisher may be nil.
func NewOrderService(store DataStore, cache Cache, publisher EventPublisher, cfg OrderConfig) *OrderService {
	if cfg.TokenLockTTL <= 0 {
		cfg.TokenLockTTL = 5 * time.Second
	}
	return &OrderService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// CustomerResolution tells whether an order reused a customer or created one
type CustomerResolution int

const (
	CustomerFound CustomerResolution = iota
	CustomerCreated
)

func (r CustomerResolution) String() string {
	if r == CustomerCreated {
		return "created"
	}
	return "found"
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID       int64           `json:"order_id"`
	OrderToken    string          `json:"order_token"`
	CustomerID    int64           `json:"customer_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	GSTAmount     decimal.Decimal `json:"gst_amount"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type pricedItem struct {
	req       OrderItemRequest
	unitPrice decimal.Decimal
}

// CreateOrder resolves the customer, prices the items, issues a token and
// persists the order in one transaction
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := req.Validate(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	if cached := s.cachedResponse(ctx, req.IdempotencyKey); cached != nil {
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", cached.OrderID))
		return cached, nil
	}

	orderDate := s.now()
	day := orderDate.Format(models.DateLayout)
	prefix := tokenPrefix(req.OrderType, req.TableNumber)

	unlock := s.lockTokenSequence(ctx, day, prefix)
	defer unlock()

	var (
		resp   *CreateOrderResponse
		priced []pricedItem
		err    error
	)
	for attempt := 0; ; attempt++ {
		token := s.issueToken(ctx, day, prefix)
		resp, priced, err = s.createOrderTx(ctx, req, orderDate, token)
		if !errors.Is(err, store.ErrTokenTaken) {
			break
		}
		if attempt >= s.cfg.TokenRetries {
			err = apperr.Conflict("Could not issue a unique order token, please retry")
			break
		}
		util.OrderTokenRetriesTotal.Inc()
		s.logger.Warn("Order token already issued, retrying",
			zap.String("prefix", prefix),
			zap.Int("attempt", attempt+1))
	}
	if err != nil {
		util.SpanError(span, err)
		util.OrdersFailedTotal.WithLabelValues(apperr.KindOf(err).String()).Inc()
		return nil, err
	}

	util.OrdersCreatedTotal.WithLabelValues(req.OrderType).Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", resp.OrderID),
		zap.String("order_token", resp.OrderToken),
		zap.String("total_amount", resp.TotalAmount.StringFixed(2)))

	s.publishOrderCreated(ctx, req, resp, day, priced)
	s.storeResponse(ctx, req.IdempotencyKey, resp)

	return resp, nil
}

// createOrderTx persists the order under a token issued beforehand, so the
// transaction is the only connection the request holds
func (s *OrderService) createOrderTx(ctx context.Context, req *CreateOrderRequest, orderDate time.Time, token string) (*CreateOrderResponse, []pricedItem, error) {
	var (
		resp   CreateOrderResponse
		priced []pricedItem
	)

	err := s.store.InTx(ctx, func(q store.Querier) error {
		customer, resolution, err := findOrCreateCustomer(ctx, q, req.Customer)
		if err != nil {
			return err
		}
		s.logger.Debug("Customer resolved",
			zap.Int64("customer_id", customer.ID),
			zap.Stringer("resolution", resolution))

		var subtotal decimal.Decimal
		priced, subtotal, err = priceItems(ctx, q, req.Items)
		if err != nil {
			return err
		}
		totals := ComputeTotals(subtotal, req.OrderType == models.OrderTypeDineIn)

		order := &models.Order{
			Token:               token,
			CustomerID:          customer.ID,
			OrderType:           req.OrderType,
			TableNumber:         req.TableNumber,
			Status:              models.OrderStatusPending,
			SpecialInstructions: req.SpecialInstructions,
			Subtotal:            totals.Subtotal,
			GSTAmount:           totals.GSTAmount,
			ServiceCharge:       totals.ServiceCharge,
			TotalAmount:         totals.TotalAmount,
			OrderDate:           orderDate,
		}
		if err := q.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, p := range priced {
			item := &models.OrderItem{
				OrderID:       order.ID,
				MenuID:        p.req.MenuID,
				Quantity:      p.req.Quantity,
				UnitPrice:     p.unitPrice,
				Subtotal:      p.unitPrice.Mul(decimal.NewFromInt(int64(p.req.Quantity))),
				Customization: p.req.Customization,
				ItemStatus:    models.ItemStatusPending,
			}
			if err := q.CreateOrderItem(ctx, item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		if order.IsDineIn() {
			if err := setTableStatus(ctx, q, s.logger, *order.TableNumber, models.TableStatusOccupied); err != nil {
				return err
			}
		}

		resp = CreateOrderResponse{
			OrderID:       order.ID,
			OrderToken:    order.Token,
			CustomerID:    customer.ID,
			Subtotal:      order.Subtotal,
			GSTAmount:     order.GSTAmount,
			ServiceCharge: order.ServiceCharge,
			TotalAmount:   order.TotalAmount,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &resp, priced, nil
}

// findOrCreateCustomer reuses the customer with the same phone or inserts a new one
func findOrCreateCustomer(ctx context.Context, q store.Querier, info CustomerInfo) (*models.Customer, CustomerResolution, error) {
	existing, err := q.GetCustomerByPhone(ctx, info.Phone)
	if err == nil {
		return existing, CustomerFound, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, CustomerFound, fmt.Errorf("failed to look up customer: %w", err)
	}

	customer := &models.Customer{
		Name:         info.Name,
		Phone:        info.Phone,
		Email:        info.Email,
		CustomerType: models.CustomerTypeRegular,
	}
	if err := q.CreateCustomer(ctx, customer); err != nil {
		return nil, CustomerCreated, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, CustomerCreated, nil
}

// priceItems snapshots the current menu price of every item
func priceItems(ctx context.Context, q store.Querier, items []OrderItemRequest) ([]pricedItem, decimal.Decimal, error) {
	priced := make([]pricedItem, 0, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		menuItem, err := q.GetMenuItem(ctx, item.MenuID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, decimal.Zero, apperr.NotFound(fmt.Sprintf("Menu item %d not found", item.MenuID))
		}
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to price menu item %d: %w", item.MenuID, err)
		}

		priced = append(priced, pricedItem{req: item, unitPrice: menuItem.Price})
		subtotal = subtotal.Add(menuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return priced, subtotal, nil
}

// issueToken reads the day's latest token for the prefix before the order
// transaction begins. A failed lookup yields a fallback token.
func (s *OrderService) issueToken(ctx context.Context, day, prefix string) string {
	latest, err := s.store.LatestOrderToken(ctx, day, prefix)
	if err != nil {
		token := fallbackToken()
		util.OrderTokenFallbacksTotal.WithLabelValues("lookup_failed").Inc()
		s.logger.Error("Order token lookup failed, issuing fallback token",
			zap.String("prefix", prefix),
			zap.String("token", token),
			zap.Error(err))
		return token
	}

	token, ok := nextToken(prefix, latest)
	if !ok {
		token = fallbackToken()
		util.OrderTokenFallbacksTotal.WithLabelValues("unparsable").Inc()
		s.logger.Warn("Latest order token has no numeric suffix, issuing fallback token",
			zap.String("latest", latest),
			zap.String("token", token))
	}
	return token
}

// lockTokenSequence serializes token issuance for one prefix and day across
// instances. Without a cache, or when the lock cannot be taken in time, the
// unique token constraint is the only guard.
func (s *OrderService) lockTokenSequence(ctx context.Context, day, prefix string) func() {
	noop := func() {}
	if s.cache == nil {
		return noop
	}

	key := fmt.Sprintf("lock:order-token:%s:%s", day, prefix)
	deadline := time.Now().Add(s.cfg.TokenLockTTL)

	for {
		owner, ok, err := s.cache.AcquireLock(ctx, key, s.cfg.TokenLockTTL)
		if err != nil {
			s.logger.Warn("Failed to acquire order token lock", zap.String("key", key), zap.Error(err))
			return noop
		}
		if ok {
			return func() {
				if err := s.cache.ReleaseLock(context.WithoutCancel(ctx), key, owner); err != nil {
					s.logger.Warn("Failed to release order token lock", zap.String("key", key), zap.Error(err))
				}
			}
		}
		if time.Now().After(deadline) {
			s.logger.Warn("Order token lock busy, continuing without it", zap.String("key", key))
			return noop
		}

		select {
		case <-ctx.Done():
			return noop
		case <-time.After(lockPollInterval):
		}
	}
}

func idempotencyCacheKey(key string) string {
	return "idempotency:orders:" + key
}

func (s *OrderService) cachedResponse(ctx context.Context, key string) *CreateOrderResponse {
	if s.cache == nil || key == "" {
		return nil
	}
	var resp CreateOrderResponse
	found, err := s.cache.GetJSON(ctx, idempotencyCacheKey(key), &resp)
	if err != nil {
		s.logger.Warn("Failed to read idempotency key", zap.String("idempotency_key", key), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	return &resp
}

func (s *OrderService) storeResponse(ctx context.Context, key string, resp *CreateOrderResponse) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.SetJSON(ctx, idempotencyCacheKey(key), resp, s.cfg.IdempotencyTTL); err != nil {
		s.logger.Warn("Failed to store idempotency key", zap.String("idempotency_key", key), zap.Error(err))
	}
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}

	items, err := s.store.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &models.OrderDetail{OrderSummary: *order, Items: items}, nil
}

// OrderListParams are the optional filters of an order listing
type OrderListParams struct {
	Status    string
	OrderType string
	Date      string
}

// ListOrders retrieves orders newest first
func (s *OrderService) ListOrders(ctx context.Context, params OrderListParams) ([]models.OrderSummary, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	filter := store.OrderFilter{OrderType: params.OrderType, Date: params.Date}
	if params.Status != "" {
		filter.Statuses = []string{params.Status}
	}
	if params.Date != "" {
		if _, err := parseDate("date", params.Date); err != nil {
			return nil, err
		}
	}
	return s.store.ListOrders(ctx, filter)
}

// ActiveOrders retrieves the kitchen queue, oldest first, with items
func (s *OrderService) ActiveOrders(ctx context.Context) ([]models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ActiveOrders")
	defer span.End()

	orders, err := s.store.ListOrders(ctx, store.OrderFilter{
		Statuses:    models.ActiveOrderStatuses,
		OldestFirst: true,
	})
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, orders)
}

func (s *OrderService) withItems(ctx context.Context, orders []models.OrderSummary) ([]models.OrderDetail, error) {
	details := make([]models.OrderDetail, 0, len(orders))
	if len(orders) == 0 {
		return details, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.store.ListOrderItems(ctx, ids...)
	if err != nil {
		return nil, err
	}

	byOrder := make(map[int64][]models.OrderItemDetail, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for _, o := range orders {
		list := byOrder[o.ID]
		if list == nil {
			list = []models.OrderItemDetail{}
		}
		details = append(details, models.OrderDetail{OrderSummary: o, Items: list})
	}
	return details, nil
}

// ListTables retrieves restaurant tables with their occupancy
func (s *OrderService) ListTables(ctx context.Context) ([]models.RestaurantTable, error) {
	return s.store.ListTables(ctx)
}

// UpdateOrderStatus sets an order's status. Any listed status may follow any other.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, req *UpdateOrderStatusRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	order, err := s.store.UpdateOrderStatus(ctx, orderID, req.OrderStatus)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(req.OrderStatus).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", req.OrderStatus))

	s.publish(ctx, "OrderStatusChanged", func() error {
		return s.publisher.PublishOrderStatusChanged(ctx, &models.OrderStatusChangedEvent{
			BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged),
			OrderID:   order.ID,
			Status:    order.Status,
			OrderDate: order.OrderDate.Format(models.DateLayout),
		})
	})
	return order, nil
}

// UpdateOrderItemStatus sets the kitchen status of one item of an order
func (s *OrderService) UpdateOrderItemStatus(ctx context.Context, orderID, itemID int64, req *UpdateItemStatusRequest) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderItemStatus")
	defer span.End()

	if err := validateStruct(req); err != nil {
		return err
	}

	if err := s.store.UpdateOrderItemStatus(ctx, orderID, itemID, req.ItemStatus); err != nil {
		return notFound(err, "Order item not found")
	}

	s.logger.Info("Order item status updated",
		zap.Int64("order_id", orderID),
		zap.Int64("order_item_id", itemID),
		zap.String("status", req.ItemStatus))
	return nil
}

// CancelOrder cancels an order that has not completed and frees its table.
// Cancelling twice is not an error and leaves the table as it is.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	var (
		order            *models.Order
		alreadyCancelled bool
	)
	err := s.store.InTx(ctx, func(q store.Querier) error {
		current, err := q.LockOrder(ctx, orderID)
		if err != nil {
			return notFound(err, "Order not found")
		}
		switch current.Status {
		case models.OrderStatusCancelled:
			alreadyCancelled = true
			return nil
		case models.OrderStatusCompleted:
			return apperr.Conflict("Cannot cancel a completed order")
		}

		order, err = q.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled)
		if err != nil {
			return notFound(err, "Order not found")
		}
		if order.IsDineIn() {
			return setTableStatus(ctx, q, s.logger, *order.TableNumber, models.TableStatusAvailable)
		}
		return nil
	})
	if err != nil {
		util.SpanError(span, err)
		return err
	}
	if alreadyCancelled {
		s.logger.Debug("Order already cancelled", zap.Int64("order_id", orderID))
		return nil
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled", zap.Int64("order_id", orderID))

	s.publish(ctx, "OrderCancelled", func() error {
		return s.publisher.PublishOrderCancelled(ctx, &models.OrderCancelledEvent{
			BaseEvent:   newBaseEvent(models.EventTypeOrderCancelled),
			OrderID:     order.ID,
			TableNumber: order.TableNumber,
			OrderDate:   order.OrderDate.Format(models.DateLayout),
		})
	})
	return nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, req *CreateOrderRequest, resp *CreateOrderResponse, day string, priced []pricedItem) {
	s.publish(ctx, "OrderCreated", func() error {
		items := make([]models.OrderItemData, 0, len(priced))
		for _, p := range priced {
			items = append(items, models.OrderItemData{
				MenuID:    p.req.MenuID,
				Quantity:  p.req.Quantity,
				UnitPrice: p.unitPrice,
			})
		}
		return s.publisher.PublishOrderCreated(ctx, &models.OrderCreatedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeOrderCreated),
			OrderID:     resp.OrderID,
			OrderToken:  resp.OrderToken,
			OrderType:   req.OrderType,
			TableNumber: req.TableNumber,
			OrderDate:   day,
			TotalAmount: resp.TotalAmount,
			Items:       items,
		})
	})
}

// publish sends an event after commit; failures are logged and never undo the commit
func (s *OrderService) publish(ctx context.Context, name string, send func() error) {
	if s.publisher == nil {
		return
	}
	if err := send(); err != nil {
		s.logger.Error("Failed to publish "+name+" event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// setTableStatus updates a table; a table missing from the floor plan is logged, not fatal
func setTableStatus(ctx context.Context, q store.Querier, logger *zap.Logger, tableNumber int, status string) error {
	found, err := q.SetTableStatus(ctx, tableNumber, status)
	if err != nil {
		return fmt.Errorf("failed to set table %d %s: %w", tableNumber, status, err)
	}
	if !found {
		logger.Warn("Restaurant table not found",
			zap.Int("table_number", tableNumber),
			zap.String("status", status))
	}
	return nil
}

// notFound turns store.ErrNotFound into a client-facing not-found error
func notFound(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return err
}
