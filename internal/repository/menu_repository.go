package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// MenuRepo provides CRUD operations for a restaurant's menu items.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// Create inserts a menu item and populates the generated ID.
func (r *MenuRepo) Create(ctx context.Context, item *model.MenuItem) error {
	ing, err := json.Marshal(item.Ingredients)
	if err != nil {
		return err
	}
	const q = `INSERT INTO menu_items
		(restaurant_id, name, image, description, price, item_type, status, count, ingredients)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		item.RestaurantID, item.Name, item.Image, item.Description, item.Price,
		item.ItemType, item.Status, item.Count, ing)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

// GetByID loads a single menu item.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	const q = `SELECT id, restaurant_id, name, image, description, price, item_type, status, count, ingredients
	           FROM menu_items WHERE id = ?`
	item, err := scanMenuItem(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	return item, err
}

func scanMenuItem(row interface{ Scan(...any) error }) (*model.MenuItem, error) {
	var item model.MenuItem
	var ing []byte
	err := row.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Image, &item.Description,
		&item.Price, &item.ItemType, &item.Status, &item.Count, &ing)
	if err != nil {
		return nil, err
	}
	if len(ing) > 0 {
		if err := json.Unmarshal(ing, &item.Ingredients); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

// ListByRestaurant returns a restaurant's menu ordered by item type,
// matching the grouping the dashboards display.
func (r *MenuRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.MenuItem, error) {
	const q = `SELECT id, restaurant_id, name, image, description, price, item_type, status, count, ingredients
	           FROM menu_items WHERE restaurant_id = ? ORDER BY item_type, id`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ItemUpdate carries the allow-listed fields a restaurant may edit on
// a menu item.  Nil pointers leave the column untouched.  This
// replaces unrestricted object merge so no other column can ever be
// written through an edit request.
type ItemUpdate struct {
	Name        *string
	Image       *string
	Description *string
	Price       *float64
	ItemType    *string
	Status      *string
	Ingredients *[]string
}

// Update applies an ItemUpdate to the item owned by restaurantID.
// Returns ErrItemNotFound when the item does not exist and
// ErrForbidden when it belongs to another restaurant.
func (r *MenuRepo) Update(ctx context.Context, id, restaurantID uint64, upd ItemUpdate) (*model.MenuItem, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.RestaurantID != restaurantID {
		return nil, ErrForbidden
	}

	set := ""
	args := []any{}
	add := func(col string, v any) {
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.ItemType != nil {
		add("item_type", *upd.ItemType)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Ingredients != nil {
		ing, err := json.Marshal(*upd.Ingredients)
		if err != nil {
			return nil, err
		}
		add("ingredients", ing)
	}
	if set != "" {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, `UPDATE menu_items SET `+set+` WHERE id = ?`, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a menu item owned by restaurantID.
func (r *MenuRepo) Delete(ctx context.Context, id, restaurantID uint64) error {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.RestaurantID != restaurantID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}
