package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// pre-ordered items.  The sitting-area snapshot is stored as a JSON
// column so the agreed price survives later catalogue edits.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Create inserts a reservation and its pre-ordered item links and
// populates the generated ID and timestamps on the given record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	area, err := json.Marshal(res.SittingArea)
	if err != nil {
		return err
	}
	const q = `INSERT INTO reservations
		(user_id, restaurant_id, reservation_date, reservation_time, party_size,
		 sitting_area, confirmation_code, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, q,
		res.UserID, res.RestaurantID, res.Date, res.Time, res.PartySize,
		area, res.ConfirmationCode, res.Status)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	for _, itemID := range res.PreOrderedItems {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO reservation_items (reservation_id, menu_item_id) VALUES (?, ?)`,
			res.ID, itemID); err != nil {
			return err
		}
	}
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetByID loads a reservation including its item links.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, restaurant_id, reservation_date, reservation_time, party_size,
	                  sitting_area, confirmation_code, status, created_at, updated_at
	           FROM reservations WHERE id = ?`
	res, err := r.scan(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if res.PreOrderedItems, err = r.itemIDs(ctx, id); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepo) scan(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var area []byte
	err := row.Scan(&res.ID, &res.UserID, &res.RestaurantID, &res.Date, &res.Time, &res.PartySize,
		&area, &res.ConfirmationCode, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(area, &res.SittingArea); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepo) itemIDs(ctx context.Context, reservationID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT menu_item_id FROM reservation_items WHERE reservation_id = ? ORDER BY id`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// listWhere runs a filtered reservation query and attaches item links.
func (r *ReservationRepo) listWhere(ctx context.Context, where string, args ...any) ([]model.Reservation, error) {
	q := `SELECT id, user_id, restaurant_id, reservation_date, reservation_time, party_size,
	             sitting_area, confirmation_code, status, created_at, updated_at
	      FROM reservations ` + where + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].PreOrderedItems, err = r.itemIDs(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListByUser returns all reservations made by a user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.listWhere(ctx, `WHERE user_id = ?`, userID)
}

// ListByRestaurant returns a restaurant's reservations, optionally
// filtered by status ("" or "all" disables the filter).
func (r *ReservationRepo) ListByRestaurant(ctx context.Context, restaurantID uint64, status string) ([]model.Reservation, error) {
	if status == "" || status == "all" {
		return r.listWhere(ctx, `WHERE restaurant_id = ?`, restaurantID)
	}
	return r.listWhere(ctx, `WHERE restaurant_id = ? AND status = ?`, restaurantID, status)
}

// UpdateStatus sets the reservation status.  Status transitions are
// the only mutation a reservation sees after creation.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrReservationNotFound
		}
	}
	return nil
}

// CountByStatus counts reservations in a given status across all
// restaurants, for the admin dashboard.
func (r *ReservationRepo) CountByStatus(ctx context.Context, status string) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE status = ?`, status).Scan(&n)
	return n, err
}

// CountAll counts every reservation on the platform.
func (r *ReservationRepo) CountAll(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&n)
	return n, err
}
