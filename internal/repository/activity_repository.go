package repository

import (
	"context"
	"database/sql"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// ActivityRepo appends to and reads the audit log.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo returns a new ActivityRepo bound to the given database.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Log appends an entry.  Callers treat the write as fire-and-forget;
// the booking flow ignores the returned error by contract.
func (r *ActivityRepo) Log(ctx context.Context, actor, activity string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (actor, activity) VALUES (?, ?)`, actor, activity)
	return err
}

// Recent returns the latest entries, newest first.
func (r *ActivityRepo) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor, activity, date FROM activities ORDER BY date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Actor, &a.Activity, &a.Date); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
