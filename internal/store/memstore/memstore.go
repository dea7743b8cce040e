// Package memstore is an in-memory store.Querier with transactional
// semantics, used to exercise the services without PostgreSQL.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pos-service/internal/apperr"
	"pos-service/internal/models"
	"pos-service/internal/store"

	"github.com/shopspring/decimal"
)

type dataset struct {
	menu      map[int64]models.MenuItem
	customers map[int64]models.Customer
	orders    map[int64]models.Order
	items     map[int64]models.OrderItem
	payments  map[int64]models.Payment
	tables    map[int]models.RestaurantTable
	seq       map[string]int64
}

func newDataset() *dataset {
	return &dataset{
		menu:      map[int64]models.MenuItem{},
		customers: map[int64]models.Customer{},
		orders:    map[int64]models.Order{},
		items:     map[int64]models.OrderItem{},
		payments:  map[int64]models.Payment{},
		tables:    map[int]models.RestaurantTable{},
		seq:       map[string]int64{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.menu {
		c.menu[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	for k, v := range d.tables {
		c.tables[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

func (d *dataset) next(name string) int64 {
	d.seq[name]++
	return d.seq[name]
}

type failure struct {
	err   error
	times int
}

// Store is the in-memory counterpart of store.Store
type Store struct {
	*Queries

	mu       sync.Mutex
	data     *dataset
	failures map[string]*failure
	commits  int
	clockMu  sync.Mutex
	clock    func() time.Time
}

// Queries runs against the committed data or a transaction's private copy
type Queries struct {
	st *Store
	tx *dataset
}

// New creates an empty store
func New() *Store {
	s := &Store{data: newDataset(), failures: map[string]*failure{}, clock: time.Now}
	s.Queries = &Queries{st: s}
	return s
}

// InTx runs fn against a private copy that replaces the committed data only
// when fn succeeds
func (s *Store) InTx(ctx context.Context, fn func(q store.Querier) error) error {
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(&Queries{st: s, tx: snapshot}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = snapshot
	s.commits++
	s.mu.Unlock()
	return nil
}

// SetClock replaces the source of generated timestamps
func (s *Store) SetClock(clock func() time.Time) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.clock = clock
}

func (s *Store) now() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	return s.clock()
}

// Fail makes the named operation return err for its next n calls
func (s *Store) Fail(op string, err error, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{err: err, times: n}
}

// Commits reports how many transactions committed
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Store) injected(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[op]
	if !ok || f.times == 0 {
		return nil
	}
	f.times--
	return f.err
}

// AddMenuItem seeds a menu item priced from a decimal string
func (s *Store) AddMenuItem(name, category, cuisine, price string) models.MenuItem {
	item := models.MenuItem{
		Name:        name,
		Category:    category,
		Cuisine:     cuisine,
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
	}
	_ = s.CreateMenuItem(context.Background(), &item)
	return item
}

// AddTable seeds an available restaurant table
func (s *Store) AddTable(number, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.tables[number] = models.RestaurantTable{
		TableNumber: number,
		Capacity:    capacity,
		Status:      models.TableStatusAvailable,
	}
}

// Table returns a seeded table
func (s *Store) Table(number int) (models.RestaurantTable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.tables[number]
	return t, ok
}

// Count returns the number of committed rows in a table
func (s *Store) Count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch table {
	case "menu":
		return len(s.data.menu)
	case "customers":
		return len(s.data.customers)
	case "orders":
		return len(s.data.orders)
	case "order_items":
		return len(s.data.items)
	case "payments":
		return len(s.data.payments)
	case "restaurant_tables":
		return len(s.data.tables)
	}
	return 0
}

func (q *Queries) with(fn func(d *dataset) error) error {
	if q.tx != nil {
		return fn(q.tx)
	}
	q.st.mu.Lock()
	defer q.st.mu.Unlock()
	return fn(q.st.data)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func day(t time.Time) string {
	return t.Format(models.DateLayout)
}

// Menu

func (q *Queries) ListMenuItems(ctx context.Context, f store.MenuFilter) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	err := q.with(func(d *dataset) error {
		for _, id := range sortedKeys(d.menu) {
			m := d.menu[id]
			if f.Cuisine != "" && m.Cuisine != f.Cuisine {
				continue
			}
			if f.Category != "" && m.Category != f.Category {
				continue
			}
			if f.Available != nil && m.IsAvailable != *f.Available {
				continue
			}
			items = append(items, m)
		}
		return nil
	})
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Cuisine != b.Cuisine {
			return a.Cuisine < b.Cuisine
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Name < b.Name
	})
	return items, err
}

func (q *Queries) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := q.with(func(d *dataset) error {
		m, ok := d.menu[id]
		if !ok {
			return store.ErrNotFound
		}
		item = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (q *Queries) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return q.with(func(d *dataset) error {
		item.ID = d.next("menu")
		item.CreatedAt = q.st.now()
		d.menu[item.ID] = *item
		return nil
	})
}

func (q *Queries) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return q.with(func(d *dataset) error {
		existing, ok := d.menu[item.ID]
		if !ok {
			return store.ErrNotFound
		}
		item.CreatedAt = existing.CreatedAt
		d.menu[item.ID] = *item
		return nil
	})
}

func (q *Queries) SetMenuAvailability(ctx context.Context, id int64, available bool) error {
	return q.with(func(d *dataset) error {
		m, ok := d.menu[id]
		if !ok {
			return store.ErrNotFound
		}
		m.IsAvailable = available
		d.menu[id] = m
		return nil
	})
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	return q.with(func(d *dataset) error {
		if _, ok := d.menu[id]; !ok {
			return store.ErrNotFound
		}
		for _, it := range d.items {
			if it.MenuID == id {
				return apperr.Conflict("Menu item is referenced by existing orders")
			}
		}
		delete(d.menu, id)
		return nil
	})
}

func (q *Queries) ListMenuCuisines(ctx context.Context) ([]string, error) {
	return q.distinctMenu(func(m models.MenuItem) string { return m.Cuisine })
}

func (q *Queries) ListMenuCategories(ctx context.Context) ([]string, error) {
	return q.distinctMenu(func(m models.MenuItem) string { return m.Category })
}

func (q *Queries) distinctMenu(field func(models.MenuItem) string) ([]string, error) {
	seen := map[string]bool{}
	values := []string{}
	err := q.with(func(d *dataset) error {
		for _, m := range d.menu {
			if !m.IsAvailable || seen[field(m)] {
				continue
			}
			seen[field(m)] = true
			values = append(values, field(m))
		}
		return nil
	})
	sort.Strings(values)
	return values, err
}

// Customers

func (q *Queries) ListCustomers(ctx context.Context, f store.CustomerFilter) ([]models.Customer, error) {
	customers := []models.Customer{}
	search := strings.ToLower(f.Search)
	err := q.with(func(d *dataset) error {
		keys := sortedKeys(d.customers)
		for i := len(keys) - 1; i >= 0; i-- {
			c := d.customers[keys[i]]
			if f.CustomerType != "" && c.CustomerType != f.CustomerType {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(c.Name), search) &&
				!strings.Contains(strings.ToLower(c.Phone), search) {
				continue
			}
			customers = append(customers, c)
		}
		return nil
	})
	return customers, err
}

func (q *Queries) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	err := q.with(func(d *dataset) error {
		found, ok := d.customers[id]
		if !ok {
			return store.ErrNotFound
		}
		c = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *Queries) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var c models.Customer
	err := q.with(func(d *dataset) error {
		for _, found := range d.customers {
			if found.Phone == phone {
				c = found
				return nil
			}
		}
		return store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *Queries) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if err := q.st.injected("CreateCustomer"); err != nil {
		return err
	}
	return q.with(func(d *dataset) error {
		for _, existing := range d.customers {
			if existing.Phone == c.Phone {
				return apperr.Conflict("Phone number already exists")
			}
		}
		c.ID = d.next("customers")
		c.TotalOrders = 0
		c.TotalSpent = decimal.Zero
		c.CreatedAt = q.st.now()
		d.customers[c.ID] = *c
		return nil
	})
}

func (q *Queries) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return q.with(func(d *dataset) error {
		existing, ok := d.customers[c.ID]
		if !ok {
			return store.ErrNotFound
		}
		for id, other := range d.customers {
			if id != c.ID && other.Phone == c.Phone {
				return apperr.Conflict("Phone number already exists")
			}
		}
		existing.Name = c.Name
		existing.Phone = c.Phone
		existing.Email = c.Email
		existing.CustomerType = c.CustomerType
		d.customers[c.ID] = existing
		return nil
	})
}

func (q *Queries) DeleteCustomer(ctx context.Context, id int64) error {
	return q.with(func(d *dataset) error {
		if _, ok := d.customers[id]; !ok {
			return store.ErrNotFound
		}
		for _, o := range d.orders {
			if o.CustomerID == id {
				return apperr.Conflict("Customer has existing orders")
			}
		}
		delete(d.customers, id)
		return nil
	})
}

func (q *Queries) AddCustomerSpend(ctx context.Context, customerID int64, amount decimal.Decimal) error {
	if err := q.st.injected("AddCustomerSpend"); err != nil {
		return err
	}
	return q.with(func(d *dataset) error {
		c, ok := d.customers[customerID]
		if !ok {
			return store.ErrNotFound
		}
		c.TotalOrders++
		c.TotalSpent = c.TotalSpent.Add(amount)
		d.customers[customerID] = c
		return nil
	})
}

func (q *Queries) ListCustomerOrders(ctx context.Context, customerID int64, limit int) ([]models.CustomerOrder, error) {
	orders := []models.CustomerOrder{}
	err := q.with(func(d *dataset) error {
		keys := sortedKeys(d.orders)
		for i := len(keys) - 1; i >= 0 && len(orders) < limit; i-- {
			o := d.orders[keys[i]]
			if o.CustomerID != customerID {
				continue
			}
			orders = append(orders, models.CustomerOrder{
				OrderID:     o.ID,
				OrderToken:  o.Token,
				OrderType:   o.OrderType,
				OrderStatus: o.Status,
				TotalAmount: o.TotalAmount,
				OrderDate:   o.OrderDate,
				CreatedAt:   o.CreatedAt,
			})
		}
		return nil
	})
	return orders, err
}

func (q *Queries) GetCustomerStats(ctx context.Context, customerID int64) (*models.CustomerStats, error) {
	stats := &models.CustomerStats{TotalSpent: decimal.Zero}
	err := q.with(func(d *dataset) error {
		for _, o := range d.orders {
			if o.CustomerID != customerID || o.Status != models.OrderStatusCompleted {
				continue
			}
			stats.TotalOrders++
			stats.TotalSpent = stats.TotalSpent.Add(o.TotalAmount)
			if stats.LastOrderDate == nil || o.CreatedAt.After(*stats.LastOrderDate) {
				created := o.CreatedAt
				stats.LastOrderDate = &created
			}
		}
		return nil
	})
	if stats.TotalOrders > 0 {
		avg := stats.TotalSpent.Div(decimal.NewFromInt(int64(stats.TotalOrders))).Round(2)
		stats.AvgOrderValue = decimal.NullDecimal{Decimal: avg, Valid: true}
	}
	return stats, err
}

// Orders

func (q *Queries) LatestOrderToken(ctx context.Context, orderDate, prefix string) (string, error) {
	if err := q.st.injected("LatestOrderToken"); err != nil {
		return "", err
	}
	var token string
	err := q.with(func(d *dataset) error {
		keys := sortedKeys(d.orders)
		for i := len(keys) - 1; i >= 0; i-- {
			o := d.orders[keys[i]]
			if day(o.OrderDate) == orderDate && strings.HasPrefix(o.Token, prefix) {
				token = o.Token
				return nil
			}
		}
		return nil
	})
	return token, err
}

func (q *Queries) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := q.st.injected("CreateOrder"); err != nil {
		return err
	}
	return q.with(func(d *dataset) error {
		if _, ok := d.customers[order.CustomerID]; !ok {
			return apperr.Conflict("Record is referenced by other records")
		}
		for _, o := range d.orders {
			if o.Token == order.Token && day(o.OrderDate) == day(order.OrderDate) {
				return store.ErrTokenTaken
			}
		}
		order.ID = d.next("orders")
		order.CreatedAt = q.st.now()
		d.orders[order.ID] = *order
		return nil
	})
}

func (q *Queries) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	if err := q.st.injected("CreateOrderItem"); err != nil {
		return err
	}
	return q.with(func(d *dataset) error {
		if _, ok := d.orders[item.OrderID]; !ok {
			return apperr.Conflict("Record is referenced by other records")
		}
		if _, ok := d.menu[item.MenuID]; !ok {
			return apperr.Conflict("Record is referenced by other records")
		}
		item.ID = d.next("order_items")
		d.items[item.ID] = *item
		return nil
	})
}

func summarize(d *dataset, o models.Order) models.OrderSummary {
	s := models.OrderSummary{Order: o}
	if c, ok := d.customers[o.CustomerID]; ok {
		name, phone := c.Name, c.Phone
		s.CustomerName = &name
		s.CustomerPhone = &phone
	}
	return s
}

func (q *Queries) GetOrder(ctx context.Context, id int64) (*models.OrderSummary, error) {
	var summary models.OrderSummary
	err := q.with(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return store.ErrNotFound
		}
		summary = summarize(d, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (q *Queries) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	summary, err := q.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &summary.Order, nil
}

func (q *Queries) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.OrderSummary, error) {
	statuses := map[string]bool{}
	for _, s := range f.Statuses {
		statuses[s] = true
	}

	orders := []models.OrderSummary{}
	err := q.with(func(d *dataset) error {
		for _, id := range sortedKeys(d.orders) {
			o := d.orders[id]
			if len(statuses) > 0 && !statuses[o.Status] {
				continue
			}
			if f.OrderType != "" && o.OrderType != f.OrderType {
				continue
			}
			if f.Date != "" && day(o.OrderDate) != f.Date {
				continue
			}
			orders = append(orders, summarize(d, o))
		}
		return nil
	})
	if !f.OldestFirst {
		for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
			orders[i], orders[j] = orders[j], orders[i]
		}
	}
	return orders, err
}

func (q *Queries) ListOrderItems(ctx context.Context, orderIDs ...int64) ([]models.OrderItemDetail, error) {
	wanted := map[int64]bool{}
	for _, id := range orderIDs {
		wanted[id] = true
	}

	items := []models.OrderItemDetail{}
	err := q.with(func(d *dataset) error {
		for _, id := range sortedKeys(d.items) {
			it := d.items[id]
			if !wanted[it.OrderID] {
				continue
			}
			m := d.menu[it.MenuID]
			items = append(items, models.OrderItemDetail{
				OrderItem:    it,
				ItemName:     m.Name,
				Category:     m.Category,
				CurrentPrice: m.Price,
			})
		}
		return nil
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].OrderID < items[j].OrderID })
	return items, err
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	var updated models.Order
	err := q.with(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return store.ErrNotFound
		}
		o.Status = status
		d.orders[id] = o
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (q *Queries) CompleteOrder(ctx context.Context, id int64, completedAt time.Time) error {
	return q.with(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return store.ErrNotFound
		}
		o.Status = models.OrderStatusCompleted
		o.CompletedAt = &completedAt
		d.orders[id] = o
		return nil
	})
}

func (q *Queries) UpdateOrderItemStatus(ctx context.Context, orderID, itemID int64, status string) error {
	return q.with(func(d *dataset) error {
		it, ok := d.items[itemID]
		if !ok || it.OrderID != orderID {
			return store.ErrNotFound
		}
		it.ItemStatus = status
		d.items[itemID] = it
		return nil
	})
}

func (q *Queries) SetTableStatus(ctx context.Context, tableNumber int, status string) (bool, error) {
	if err := q.st.injected("SetTableStatus"); err != nil {
		return false, err
	}
	found := false
	err := q.with(func(d *dataset) error {
		t, ok := d.tables[tableNumber]
		if !ok {
			return nil
		}
		t.Status = status
		d.tables[tableNumber] = t
		found = true
		return nil
	})
	return found, err
}

func (q *Queries) ListTables(ctx context.Context) ([]models.RestaurantTable, error) {
	tables := []models.RestaurantTable{}
	err := q.with(func(d *dataset) error {
		for _, t := range d.tables {
			tables = append(tables, t)
		}
		return nil
	})
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableNumber < tables[j].TableNumber })
	return tables, err
}

// Payments

func (q *Queries) CreatePayment(ctx context.Context, p *models.Payment) error {
	if err := q.st.injected("CreatePayment"); err != nil {
		return err
	}
	return q.with(func(d *dataset) error {
		for _, existing := range d.payments {
			if existing.OrderID == p.OrderID {
				return apperr.Conflict("Payment already processed for this order")
			}
		}
		p.ID = d.next("payments")
		p.PaymentDate = q.st.now()
		d.payments[p.ID] = *p
		return nil
	})
}

func paymentSummary(d *dataset, p models.Payment) models.PaymentSummary {
	s := models.PaymentSummary{Payment: p}
	if o, ok := d.orders[p.OrderID]; ok {
		s.OrderToken = o.Token
		if c, ok := d.customers[o.CustomerID]; ok {
			name, phone := c.Name, c.Phone
			s.CustomerName = &name
			s.CustomerPhone = &phone
		}
	}
	return s
}

func (q *Queries) GetPayment(ctx context.Context, id int64) (*models.PaymentSummary, error) {
	var summary models.PaymentSummary
	err := q.with(func(d *dataset) error {
		p, ok := d.payments[id]
		if !ok {
			return store.ErrNotFound
		}
		summary = paymentSummary(d, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (q *Queries) GetPaymentByOrder(ctx context.Context, orderID int64) (*models.PaymentSummary, error) {
	var summary models.PaymentSummary
	err := q.with(func(d *dataset) error {
		for _, p := range d.payments {
			if p.OrderID == orderID {
				summary = paymentSummary(d, p)
				return nil
			}
		}
		return store.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (q *Queries) ListPayments(ctx context.Context, f store.PaymentFilter) ([]models.PaymentSummary, error) {
	payments := []models.PaymentSummary{}
	err := q.with(func(d *dataset) error {
		keys := sortedKeys(d.payments)
		for i := len(keys) - 1; i >= 0; i-- {
			p := d.payments[keys[i]]
			if f.Date != "" && day(p.PaymentDate) != f.Date {
				continue
			}
			if f.PaymentMethod != "" && p.PaymentMethod != f.PaymentMethod {
				continue
			}
			payments = append(payments, paymentSummary(d, p))
		}
		return nil
	})
	return payments, err
}

func (q *Queries) PaymentExists(ctx context.Context, orderID int64) (bool, error) {
	exists := false
	err := q.with(func(d *dataset) error {
		for _, p := range d.payments {
			if p.OrderID == orderID {
				exists = true
			}
		}
		return nil
	})
	return exists, err
}

func (q *Queries) PaymentDaySummary(ctx context.Context, dayStr string) (*models.PaymentDaySummary, error) {
	summary := &models.PaymentDaySummary{
		TotalRevenue: decimal.Zero,
		CashTotal:    decimal.Zero,
		CardTotal:    decimal.Zero,
		UPITotal:     decimal.Zero,
	}
	err := q.with(func(d *dataset) error {
		for _, p := range d.payments {
			if day(p.PaymentDate) != dayStr {
				continue
			}
			summary.TotalTransactions++
			summary.TotalRevenue = summary.TotalRevenue.Add(p.TotalAmount)
			switch p.PaymentMethod {
			case models.PaymentMethodCash:
				summary.CashTotal = summary.CashTotal.Add(p.TotalAmount)
			case models.PaymentMethodCard:
				summary.CardTotal = summary.CardTotal.Add(p.TotalAmount)
			case models.PaymentMethodUPI:
				summary.UPITotal = summary.UPITotal.Add(p.TotalAmount)
			}
		}
		return nil
	})
	return summary, err
}

var _ store.Querier = (*Queries)(nil)
