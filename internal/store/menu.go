package store

import (
	"context"
	"fmt"

	"pos-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const menuColumns = `menu_id, item_name, description, category, cuisine, price,
	preparation_time, is_available, created_at`

// ListMenuItems retrieves menu items ordered by cuisine, category and name
func (s *Queries) ListMenuItems(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	query := "SELECT " + menuColumns + " FROM menu WHERE 1=1"
	var args []interface{}

	if f.Cuisine != "" {
		query += " AND cuisine = ?"
		args = append(args, f.Cuisine)
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Available != nil {
		query += " AND is_available = ?"
		args = append(args, *f.Available)
	}
	query += " ORDER BY cuisine, category, item_name"

	items := []models.MenuItem{}
	if err := sqlx.SelectContext(ctx, s.q, &items, s.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// GetMenuItem retrieves a menu item by ID
func (s *Queries) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := sqlx.GetContext(ctx, s.q, &item, "SELECT "+menuColumns+" FROM menu WHERE menu_id = $1", id)
	if err != nil {
		return nil, classify(err)
	}
	return &item, nil
}

// CreateMenuItem inserts a menu item and fills its generated fields
func (s *Queries) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	query := `
		INSERT INTO menu (item_name, description, category, cuisine, price, preparation_time, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING menu_id, created_at`

	row := s.q.QueryRowxContext(ctx, query,
		item.Name, item.Description, item.Category, item.Cuisine,
		item.Price, item.PreparationTime, item.IsAvailable)
	return classify(row.Scan(&item.ID, &item.CreatedAt))
}

// UpdateMenuItem replaces the editable fields of a menu item
func (s *Queries) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	query := `
		UPDATE menu
		SET item_name = $1, description = $2, category = $3, cuisine = $4,
			price = $5, preparation_time = $6, is_available = $7
		WHERE menu_id = $8`

	return expectAffected(s.q.ExecContext(ctx, query,
		item.Name, item.Description, item.Category, item.Cuisine,
		item.Price, item.PreparationTime, item.IsAvailable, item.ID))
}

// SetMenuAvailability toggles whether an item can be ordered
func (s *Queries) SetMenuAvailability(ctx context.Context, id int64, available bool) error {
	return expectAffected(s.q.ExecContext(ctx,
		"UPDATE menu SET is_available = $1 WHERE menu_id = $2", available, id))
}

// DeleteMenuItem removes a menu item
func (s *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	return expectAffected(s.q.ExecContext(ctx, "DELETE FROM menu WHERE menu_id = $1", id))
}

// ListMenuCuisines returns the distinct cuisines of available items
func (s *Queries) ListMenuCuisines(ctx context.Context) ([]string, error) {
	cuisines := []string{}
	err := sqlx.SelectContext(ctx, s.q, &cuisines,
		"SELECT DISTINCT cuisine FROM menu WHERE is_available = TRUE ORDER BY cuisine")
	if err != nil {
		return nil, fmt.Errorf("failed to list cuisines: %w", err)
	}
	return cuisines, nil
}

// ListMenuCategories returns the distinct categories of available items
func (s *Queries) ListMenuCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := sqlx.SelectContext(ctx, s.q, &categories,
		"SELECT DISTINCT category FROM menu WHERE is_available = TRUE ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
