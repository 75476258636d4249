package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// RestaurantRepo provides access to the restaurants table.  It also
// carries the conditional capacity-reset write used by the booking
// flow.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo returns a new RestaurantRepo bound to the given database.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

const restaurantCols = `id, name, cuisine_type, address, phone, email, open_time, close_time,
	mpesa_number, approval_status, current_capacity, initial_capacity, image, last_reset, password_hash`

func scanRestaurant(row interface{ Scan(...any) error }) (*model.Restaurant, error) {
	var rst model.Restaurant
	err := row.Scan(&rst.ID, &rst.Name, &rst.CuisineType, &rst.Address, &rst.Phone, &rst.Email,
		&rst.OpenTime, &rst.CloseTime, &rst.MpesaNumber, &rst.ApprovalStatus,
		&rst.CurrentCapacity, &rst.InitialCapacity, &rst.Image, &rst.LastReset, &rst.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &rst, nil
}

// Create registers a new restaurant in pending state.  InitialCapacity
// is set equal to the submitted capacity; both counters start full.
func (r *RestaurantRepo) Create(ctx context.Context, rst *model.Restaurant) (uint64, error) {
	const q = `INSERT INTO restaurants
		(name, cuisine_type, address, phone, email, open_time, close_time, mpesa_number,
		 approval_status, current_capacity, initial_capacity, image, last_reset, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rst.Name, rst.CuisineType, rst.Address, rst.Phone, rst.Email,
		rst.OpenTime, rst.CloseTime, rst.MpesaNumber, model.ApprovalPending,
		rst.CurrentCapacity, rst.InitialCapacity, rst.Image, time.Now().UTC(), rst.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID loads a restaurant by primary key.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	rst, err := scanRestaurant(r.db.QueryRowContext(ctx,
		`SELECT `+restaurantCols+` FROM restaurants WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrRestaurantNotFound
	}
	return rst, err
}

// GetByEmail loads a restaurant by login email.
func (r *RestaurantRepo) GetByEmail(ctx context.Context, email string) (*model.Restaurant, error) {
	rst, err := scanRestaurant(r.db.QueryRowContext(ctx,
		`SELECT `+restaurantCols+` FROM restaurants WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, ErrRestaurantNotFound
	}
	return rst, err
}

// ResetCapacity restores current_capacity to initial_capacity and
// stamps last_reset.  One conditional write, invoked inline by the
// capacity tracker when the reset window has elapsed.
func (r *RestaurantRepo) ResetCapacity(ctx context.Context, id uint64, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE restaurants SET current_capacity = initial_capacity, last_reset = ? WHERE id = ?`,
		now, id)
	return err
}

// BrowseFilter narrows the approved-restaurant listing.
type BrowseFilter struct {
	Search   string // matches name, address or email
	Cuisine  string // matches cuisine_type
	Location string // matches address
	Page     int
	PageSize int
}

// ListApproved returns a page of accepted restaurants matching the
// filter, plus the total match count for pagination.
func (r *RestaurantRepo) ListApproved(ctx context.Context, f BrowseFilter) ([]model.Restaurant, uint64, error) {
	where := `WHERE approval_status = ?`
	args := []any{model.ApprovalAccepted}
	if f.Search != "" {
		where += ` AND (name LIKE ? OR address LIKE ? OR email LIKE ?)`
		p := "%" + f.Search + "%"
		args = append(args, p, p, p)
	}
	if f.Cuisine != "" {
		where += ` AND cuisine_type LIKE ?`
		args = append(args, "%"+f.Cuisine+"%")
	}
	if f.Location != "" {
		where += ` AND address LIKE ?`
		args = append(args, "%"+f.Location+"%")
	}

	var total uint64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
	q := fmt.Sprintf(`SELECT %s FROM restaurants %s ORDER BY id LIMIT ? OFFSET ?`, restaurantCols, where)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Restaurant{}
	for rows.Next() {
		rst, err := scanRestaurant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rst)
	}
	return out, total, rows.Err()
}

// ListAll returns every restaurant regardless of approval, for the
// admin approval queue.
func (r *RestaurantRepo) ListAll(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+restaurantCols+` FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Restaurant{}
	for rows.Next() {
		rst, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rst)
	}
	return out, rows.Err()
}

// SetApproval records the admin decision and the generated password
// hash the restaurant will log in with.
func (r *RestaurantRepo) SetApproval(ctx context.Context, id uint64, status, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE restaurants SET approval_status = ?, password_hash = ? WHERE id = ?`,
		status, passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// ProfileUpdate carries the allow-listed fields a restaurant may
// change on its own profile.  Nil pointers leave the column untouched.
type ProfileUpdate struct {
	Name         *string
	CuisineType  *string
	Address      *string
	Phone        *string
	OpenTime     *string
	CloseTime    *string
	MpesaNumber  *string
	Image        *string
	PasswordHash *string
}

// UpdateProfile applies a ProfileUpdate.  Only named columns can ever
// be written; arbitrary field injection is not possible.
func (r *RestaurantRepo) UpdateProfile(ctx context.Context, id uint64, upd ProfileUpdate) error {
	set := ""
	args := []any{}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, *v)
	}
	add("name", upd.Name)
	add("cuisine_type", upd.CuisineType)
	add("address", upd.Address)
	add("phone", upd.Phone)
	add("open_time", upd.OpenTime)
	add("close_time", upd.CloseTime)
	add("mpesa_number", upd.MpesaNumber)
	add("image", upd.Image)
	add("password_hash", upd.PasswordHash)
	if set == "" {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE restaurants SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM restaurants WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrRestaurantNotFound
		}
	}
	return nil
}

// CountApproved counts accepted restaurants for the admin dashboard.
func (r *RestaurantRepo) CountApproved(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM restaurants WHERE approval_status = ?`, model.ApprovalAccepted).Scan(&n)
	return n, err
}

// SetResetToken stores a password-reset token hash and expiry against
// the restaurant registered under email.  Returns
// ErrRestaurantNotFound when no restaurant uses the address.
func (r *RestaurantRepo) SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE restaurants SET reset_token_hash = ?, reset_token_expires = ? WHERE email = ?`,
		tokenHash, expires, email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// ResetPassword swaps in a new password hash for the restaurant
// holding a live reset token and clears the token.  Returns
// ErrResetInvalid when the token is unknown or expired.
func (r *RestaurantRepo) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE restaurants SET password_hash = ?, reset_token_hash = NULL, reset_token_expires = NULL
		 WHERE reset_token_hash = ? AND reset_token_expires > ?`,
		passwordHash, tokenHash, now)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrResetInvalid
	}
	return nil
}
