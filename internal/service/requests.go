package service

import (
	"strings"

	"pos-service/internal/apperr"
	"pos-service/internal/models"

	"github.com/shopspring/decimal"
)

// CustomerInfo identifies the guest placing an order
type CustomerInfo struct {
	Name  string  `json:"name" validate:"required"`
	Phone string  `json:"phone" validate:"required"`
	Email *string `json:"email,omitempty"`
}

// OrderItemRequest is one line of a new order
type OrderItemRequest struct {
	MenuID        int64   `json:"menu_id" validate:"gt=0"`
	Quantity      int     `json:"quantity" validate:"gt=0"`
	Customization *string `json:"customization,omitempty"`
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	Customer            CustomerInfo       `json:"customer"`
	OrderType           string             `json:"order_type" validate:"required,oneof=dine-in takeaway"`
	TableNumber         *int               `json:"table_number,omitempty"`
	Items               []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	SpecialInstructions *string            `json:"special_instructions,omitempty"`
	IdempotencyKey      string             `json:"idempotency_key,omitempty"`
}

// Validate checks the request before any store access
func (r *CreateOrderRequest) Validate() error {
	r.Customer.Name = strings.TrimSpace(r.Customer.Name)
	r.Customer.Phone = strings.TrimSpace(r.Customer.Phone)

	if err := validateStruct(r); err != nil {
		return err
	}

	switch r.OrderType {
	case models.OrderTypeDineIn:
		if r.TableNumber == nil {
			return apperr.Validation("table_number", "is required for dine-in orders")
		}
		if *r.TableNumber <= 0 {
			return apperr.Validation("table_number", "must be greater than 0")
		}
	case models.OrderTypeTakeaway:
		if r.TableNumber != nil {
			return apperr.Validation("table_number", "must be empty for takeaway orders")
		}
	}
	return nil
}

// MenuItemRequest creates or replaces a menu item
type MenuItemRequest struct {
	ItemName        string           `json:"item_name" validate:"required"`
	Description     *string          `json:"description,omitempty"`
	Category        string           `json:"category" validate:"required"`
	Cuisine         string           `json:"cuisine" validate:"required"`
	Price           *decimal.Decimal `json:"price"`
	PreparationTime *int             `json:"preparation_time,omitempty" validate:"omitempty,gte=0"`
	IsAvailable     *bool            `json:"is_available,omitempty"`
}

// Validate checks required fields and a non-negative price
func (r *MenuItemRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Price == nil {
		return apperr.Validation("price", "is required")
	}
	if r.Price.IsNegative() {
		return apperr.Validation("price", "must be non-negative")
	}
	return nil
}

func (r *MenuItemRequest) toModel() *models.MenuItem {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return &models.MenuItem{
		Name:            r.ItemName,
		Description:     r.Description,
		Category:        r.Category,
		Cuisine:         r.Cuisine,
		Price:           r.Price.Round(2),
		PreparationTime: r.PreparationTime,
		IsAvailable:     available,
	}
}

// AvailabilityRequest toggles a menu item
type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// CustomerRequest creates or replaces a customer
type CustomerRequest struct {
	Name         string  `json:"name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Email        *string `json:"email,omitempty"`
	CustomerType string  `json:"customer_type,omitempty" validate:"omitempty,oneof=regular vip corporate"`
}

// Validate checks required fields and defaults the customer type
func (r *CustomerRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.CustomerType == "" {
		r.CustomerType = models.CustomerTypeRegular
	}
	return nil
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" validate:"required,oneof=pending preparing ready completed cancelled"`
}

// UpdateItemStatusRequest moves one order item to a new kitchen status
type UpdateItemStatusRequest struct {
	ItemStatus string `json:"item_status" validate:"required,oneof=pending preparing ready served"`
}

// SettlePaymentRequest represents a request to settle an order
type SettlePaymentRequest struct {
	OrderID        int64            `json:"order_id" validate:"gt=0"`
	PaymentMethod  string           `json:"payment_method" validate:"required,oneof=cash card upi"`
	AmountReceived *decimal.Decimal `json:"amount_received,omitempty"`
}

// Validate checks the payment method and a non-negative amount
func (r *SettlePaymentRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.AmountReceived != nil && r.AmountReceived.IsNegative() {
		return apperr.Validation("amount_received", "must be non-negative")
	}
	return nil
}
