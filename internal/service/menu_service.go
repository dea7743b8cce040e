package service

import (
	"context"

	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// MenuService manages menu items
type MenuService struct {
	store  store.Querier
	logger *zap.Logger
}

// NewMenuService creates a new menu service
func NewMenuService(store store.Querier) *MenuService {
	return &MenuService{store: store, logger: util.GetLogger()}
}

// ListMenu retrieves menu items matching the filter
func (ms *MenuService) ListMenu(ctx context.Context, filter store.MenuFilter) ([]models.MenuItem, error) {
	return ms.store.ListMenuItems(ctx, filter)
}

// GetMenuItem retrieves a menu item by ID
func (ms *MenuService) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := ms.store.GetMenuItem(ctx, id)
	if err != nil {
		return nil, notFound(err, "Menu item not found")
	}
	return item, nil
}

// CreateMenuItem adds a dish to the menu
func (ms *MenuService) CreateMenuItem(ctx context.Context, req *MenuItemRequest) (*models.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item := req.toModel()
	if err := ms.store.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}

	ms.logger.Info("Menu item created", zap.Int64("menu_id", item.ID), zap.String("item_name", item.Name))
	return item, nil
}

// UpdateMenuItem replaces a menu item. Prices already captured by orders are unaffected.
func (ms *MenuService) UpdateMenuItem(ctx context.Context, id int64, req *MenuItemRequest) (*models.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item := req.toModel()
	item.ID = id
	if err := ms.store.UpdateMenuItem(ctx, item); err != nil {
		return nil, notFound(err, "Menu item not found")
	}
	return ms.GetMenuItem(ctx, id)
}

// SetAvailability toggles whether a menu item can be ordered
func (ms *MenuService) SetAvailability(ctx context.Context, id int64, req *AvailabilityRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := ms.store.SetMenuAvailability(ctx, id, *req.IsAvailable); err != nil {
		return notFound(err, "Menu item not found")
	}
	return nil
}

// DeleteMenuItem removes a menu item that no order references
func (ms *MenuService) DeleteMenuItem(ctx context.Context, id int64) error {
	if err := ms.store.DeleteMenuItem(ctx, id); err != nil {
		return notFound(err, "Menu item not found")
	}
	ms.logger.Info("Menu item deleted", zap.Int64("menu_id", id))
	return nil
}

// Cuisines lists the cuisines of available items
func (ms *MenuService) Cuisines(ctx context.Context) ([]string, error) {
	return ms.store.ListMenuCuisines(ctx)
}

// Categories lists the categories of available items
func (ms *MenuService) Categories(ctx context.Context) ([]string, error) {
	return ms.store.ListMenuCategories(ctx)
}
