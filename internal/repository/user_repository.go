package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// UserRepo provides access to the users table and the side tables
// holding a user's M-Pesa numbers and favourite restaurants.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user with an already bcrypt-hashed password and
// returns the generated ID.  A duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	const q = `INSERT INTO users
		(first_name, last_name, email, age, phone_number, password_hash, dining_preferences, profile_picture, online)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		u.FirstName, u.LastName, u.Email, u.Age, u.PhoneNumber,
		u.PasswordHash, u.DiningPreferences, u.ProfilePicture, u.Online)
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

// GetByEmail loads a user by email.  Returns ErrUserNotFound when no
// account exists for the address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, first_name, last_name, email, age, phone_number, password_hash,
	                  dining_preferences, profile_picture, online, registered_at
	           FROM users WHERE email = ?`
	u, err := r.scanOne(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByID loads a user by primary key, including M-Pesa numbers and
// favourite restaurant IDs.  Returns ErrUserNotFound when missing.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, first_name, last_name, email, age, phone_number, password_hash,
	                  dining_preferences, profile_picture, online, registered_at
	           FROM users WHERE id = ?`
	u, err := r.scanOne(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.MpesaNumbers, err = r.MpesaNumbers(ctx, id); err != nil {
		return nil, err
	}
	if u.FavouriteIDs, err = r.FavouriteIDs(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Age, &u.PhoneNumber,
		&u.PasswordHash, &u.DiningPreferences, &u.ProfilePicture, &u.Online, &u.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies the allow-listed profile fields.  Empty
// strings leave the stored value untouched, matching PATCH semantics.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, email, passwordHash string) error {
	const q = `UPDATE users SET
		first_name = COALESCE(NULLIF(?, ''), first_name),
		last_name = COALESCE(NULLIF(?, ''), last_name),
		email = COALESCE(NULLIF(?, ''), email),
		password_hash = COALESCE(NULLIF(?, ''), password_hash)
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, firstName, lastName, email, passwordHash, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows can also mean "no change"; verify existence
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
	}
	return nil
}

// SetOnline flips the online flag shown by the admin dashboard.
func (r *UserRepo) SetOnline(ctx context.Context, id uint64, online bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET online = ? WHERE id = ?`, online, id)
	return err
}

// MpesaNumbers returns the phone numbers the user has paid with.
func (r *UserRepo) MpesaNumbers(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT phone FROM user_mpesa_numbers WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	nums := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		nums = append(nums, p)
	}
	return nums, rows.Err()
}

// AddMpesaNumber records a phone number against the user if not
// already present.  The insert is idempotent.
func (r *UserRepo) AddMpesaNumber(ctx context.Context, userID uint64, phone string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO user_mpesa_numbers (user_id, phone) VALUES (?, ?)`, userID, phone)
	return err
}

// FavouriteIDs returns the restaurant IDs the user marked as favourites.
func (r *UserRepo) FavouriteIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT restaurant_id FROM user_favourites WHERE user_id = ? ORDER BY id`, userID)
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

// AddFavourite links a restaurant to the user's favourites.  Returns
// false when the restaurant was already a favourite.
func (r *UserRepo) AddFavourite(ctx context.Context, userID, restaurantID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO user_favourites (user_id, restaurant_id) VALUES (?, ?)`, userID, restaurantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// List returns all users without password hashes, for the admin dashboard.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT id, first_name, last_name, email, age, phone_number,
	                  dining_preferences, profile_picture, online, registered_at
	           FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Age, &u.PhoneNumber,
			&u.DiningPreferences, &u.ProfilePicture, &u.Online, &u.RegisteredAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountOnline counts users currently marked online.
func (r *UserRepo) CountOnline(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE online = TRUE`).Scan(&n)
	return n, err
}

// Delete removes a user and returns the deleted record for the audit
// log.  Returns ErrUserNotFound when the user does not exist.
func (r *UserRepo) Delete(ctx context.Context, id uint64) (*model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return u, nil
}

// SetResetToken stores the hash of a freshly issued password-reset
// token and its expiry against the account with the given email.
// Returns ErrUserNotFound when no account exists for the address.
func (r *UserRepo) SetResetToken(ctx context.Context, email, tokenHash string, expires time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = ?, reset_token_expires = ? WHERE email = ?`,
		tokenHash, expires, email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ResetPassword swaps in a new password hash for the account holding a
// live reset token and clears the token so it cannot be replayed.
// Returns ErrResetInvalid when the token is unknown or expired.
func (r *UserRepo) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token_hash = NULL, reset_token_expires = NULL
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

// isDuplicate reports whether err is a MySQL duplicate-key error
// (error 1062, ER_DUP_ENTRY).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
