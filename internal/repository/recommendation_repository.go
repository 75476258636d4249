package repository

import (
	"context"
	"database/sql"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// RecommendationRepo caches AI-generated restaurant suggestions.
// Each user has at most one cached set; stale sets are deleted and
// regenerated by the recommendation service.
type RecommendationRepo struct {
	db *sql.DB
}

// NewRecommendationRepo returns a new RecommendationRepo bound to the given database.
func NewRecommendationRepo(db *sql.DB) *RecommendationRepo { return &RecommendationRepo{db: db} }

// GetByUser loads the cached suggestions for a user.  sql.ErrNoRows is
// passed through when no cache exists.
func (r *RecommendationRepo) GetByUser(ctx context.Context, userID uint64) (*model.Recommendation, error) {
	var rec model.Recommendation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM recommendations WHERE user_id = ? LIMIT 1`, userID).
		Scan(&rec.ID, &rec.UserID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT restaurant_id, kind FROM recommendation_entries WHERE recommendation_id = ? ORDER BY id`, rec.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var kind string
		if err := rows.Scan(&id, &kind); err != nil {
			return nil, err
		}
		if kind == "favourites" {
			rec.BasedOnFavourites = append(rec.BasedOnFavourites, id)
		} else {
			rec.NewToYou = append(rec.NewToYou, id)
		}
	}
	return &rec, rows.Err()
}

// Replace deletes any cached set for the user and stores a new one.
func (r *RecommendationRepo) Replace(ctx context.Context, rec *model.Recommendation) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM recommendations WHERE user_id = ?`, rec.UserID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recommendations (user_id) VALUES (?)`, rec.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	insert := func(ids []uint64, kind string) error {
		for _, rid := range ids {
			if _, err := r.db.ExecContext(ctx,
				`INSERT INTO recommendation_entries (recommendation_id, restaurant_id, kind) VALUES (?, ?, ?)`,
				rec.ID, rid, kind); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(rec.BasedOnFavourites, "favourites"); err != nil {
		return err
	}
	return insert(rec.NewToYou, "new")
}

// DeleteByUser drops the cached set, used when it has gone stale.
func (r *RecommendationRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID)
	return err
}
