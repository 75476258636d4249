package repository

import (
	"context"
	"database/sql"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// SittingAreaRepo provides access to the sitting area catalogue.
// Areas with a NULL restaurant_id are global and visible to every
// restaurant alongside its own areas.
type SittingAreaRepo struct {
	db *sql.DB
}

// NewSittingAreaRepo returns a new SittingAreaRepo bound to the given database.
func NewSittingAreaRepo(db *sql.DB) *SittingAreaRepo { return &SittingAreaRepo{db: db} }

// ListForRestaurant returns the active global areas plus the areas
// owned by the restaurant, cheapest first.
func (r *SittingAreaRepo) ListForRestaurant(ctx context.Context, restaurantID uint64) ([]model.SittingArea, error) {
	const q = `SELECT id, area_key, name, description, price, icon_type, active, restaurant_id, created_at
	           FROM sitting_areas
	           WHERE (restaurant_id IS NULL OR restaurant_id = ?) AND active = TRUE
	           ORDER BY price`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	areas := []model.SittingArea{}
	for rows.Next() {
		var a model.SittingArea
		var rid sql.NullInt64
		if err := rows.Scan(&a.ID, &a.AreaKey, &a.Name, &a.Description, &a.Price,
			&a.IconType, &a.Active, &rid, &a.CreatedAt); err != nil {
			return nil, err
		}
		if rid.Valid {
			v := uint64(rid.Int64)
			a.RestaurantID = &v
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// GetByKey loads an area visible to the restaurant by its key.
// Returns ErrAreaNotFound when no active area matches.
func (r *SittingAreaRepo) GetByKey(ctx context.Context, restaurantID uint64, areaKey string) (*model.SittingArea, error) {
	const q = `SELECT id, area_key, name, description, price, icon_type, active, restaurant_id, created_at
	           FROM sitting_areas
	           WHERE area_key = ? AND (restaurant_id IS NULL OR restaurant_id = ?) AND active = TRUE
	           LIMIT 1`
	var a model.SittingArea
	var rid sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, areaKey, restaurantID).Scan(
		&a.ID, &a.AreaKey, &a.Name, &a.Description, &a.Price, &a.IconType, &a.Active, &rid, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAreaNotFound
		}
		return nil, err
	}
	if rid.Valid {
		v := uint64(rid.Int64)
		a.RestaurantID = &v
	}
	return &a, nil
}

// Create adds a restaurant-owned sitting area.  Returns ErrAreaExists
// when the key is already taken globally or by the same restaurant.
func (r *SittingAreaRepo) Create(ctx context.Context, a *model.SittingArea) error {
	// the key must be free among global areas and the owner's areas
	var exists bool
	const check = `SELECT EXISTS(
		SELECT 1 FROM sitting_areas WHERE area_key = ? AND (restaurant_id IS NULL OR restaurant_id <=> ?))`
	if err := r.db.QueryRowContext(ctx, check, a.AreaKey, a.RestaurantID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrAreaExists
	}
	const q = `INSERT INTO sitting_areas (area_key, name, description, price, icon_type, active, restaurant_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		a.AreaKey, a.Name, a.Description, a.Price, a.IconType, a.Active, a.RestaurantID)
	if err != nil {
		if isDuplicate(err) {
			return ErrAreaExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}
