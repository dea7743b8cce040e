package service

import (
	"context"

	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

const customerHistoryLimit = 20

// CustomerService manages customers
type CustomerService struct {
	store  store.Querier
	logger *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(store store.Querier) *CustomerService {
	return &CustomerService{store: store, logger: util.GetLogger()}
}

// ListCustomers retrieves customers newest first
func (cs *CustomerService) ListCustomers(ctx context.Context, filter store.CustomerFilter) ([]models.Customer, error) {
	return cs.store.ListCustomers(ctx, filter)
}

// GetCustomer retrieves a customer by ID
func (cs *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := cs.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, notFound(err, "Customer not found")
	}
	return c, nil
}

// GetCustomerByPhone retrieves a customer by exact phone number
func (cs *CustomerService) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	c, err := cs.store.GetCustomerByPhone(ctx, phone)
	if err != nil {
		return nil, notFound(err, "Customer not found")
	}
	return c, nil
}

// CreateCustomer registers a customer; phone numbers are unique
func (cs *CustomerService) CreateCustomer(ctx context.Context, req *CustomerRequest) (*models.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &models.Customer{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		CustomerType: req.CustomerType,
	}
	if err := cs.store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	cs.logger.Info("Customer created", zap.Int64("customer_id", c.ID))
	return c, nil
}

// UpdateCustomer replaces a customer's contact details
func (cs *CustomerService) UpdateCustomer(ctx context.Context, id int64, req *CustomerRequest) (*models.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &models.Customer{
		ID:           id,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		CustomerType: req.CustomerType,
	}
	if err := cs.store.UpdateCustomer(ctx, c); err != nil {
		return nil, notFound(err, "Customer not found")
	}
	return cs.GetCustomer(ctx, id)
}

// DeleteCustomer removes a customer without orders
func (cs *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := cs.store.DeleteCustomer(ctx, id); err != nil {
		return notFound(err, "Customer not found")
	}
	cs.logger.Info("Customer deleted", zap.Int64("customer_id", id))
	return nil
}

// CustomerOrders retrieves the latest orders of a customer
func (cs *CustomerService) CustomerOrders(ctx context.Context, id int64) ([]models.CustomerOrder, error) {
	if _, err := cs.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	return cs.store.ListCustomerOrders(ctx, id, customerHistoryLimit)
}

// CustomerStats aggregates a customer's completed orders
func (cs *CustomerService) CustomerStats(ctx context.Context, id int64) (*models.CustomerStats, error) {
	if _, err := cs.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	return cs.store.GetCustomerStats(ctx, id)
}

