package repository

import (
	"context"
	"database/sql"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// PaymentRepo persists mobile-money payment attempts.  A payment row
// is inserted pending by the payment initiator and updated exactly
// once by the reconciler.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a payment and populates the generated ID and
// timestamps on the given record.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (user_id, reservation_id, method, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.UserID, p.ReservationID, p.Method, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM payments WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// UpdateStatus sets the payment status.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE payments SET status = ? WHERE id = ?`, status, id)
	return err
}

// GetByReservation loads the payment attached to a reservation.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID uint64) (*model.Payment, error) {
	const q = `SELECT id, user_id, reservation_id, method, status, created_at, updated_at
	           FROM payments WHERE reservation_id = ? ORDER BY id DESC LIMIT 1`
	var p model.Payment
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&p.ID, &p.UserID, &p.ReservationID, &p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountConfirmed counts confirmed payments, for the admin revenue figure.
func (r *PaymentRepo) CountConfirmed(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE status = ?`, model.PaymentConfirmed).Scan(&n)
	return n, err
}
