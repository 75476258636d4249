package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo manages diner refresh tokens.  Restaurant and admin
// sessions are access-token only, so every row in refresh_tokens
// belongs to a diner account.  Only SHA-256 hashes of the opaque
// tokens are stored.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh records the hash of a freshly issued refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, dinerID uint64, tokenHash string, expires time.Time) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)`
	_, err := r.db.ExecContext(ctx, q, dinerID, tokenHash, expires)
	return err
}

// ValidateRefresh resolves a presented token hash to the owning diner.
// Unknown, revoked and expired tokens all come back as
// ErrRefreshInvalid so callers cannot tell the cases apart.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	const q = `SELECT user_id FROM refresh_tokens
	           WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`
	var dinerID uint64
	err := r.db.QueryRowContext(ctx, q, tokenHash, time.Now().UTC()).Scan(&dinerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrRefreshInvalid
		}
		return 0, err
	}
	return dinerID, nil
}

// Rotate revokes the presented token and records its replacement in
// one transaction, so a crash between the two steps cannot leave the
// diner with both tokens live.  Returns the owning diner's id.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash, newHash string, expires time.Time) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const sel = `SELECT user_id FROM refresh_tokens
	             WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`
	var dinerID uint64
	if err := tx.QueryRowContext(ctx, sel, oldHash, time.Now().UTC()).Scan(&dinerID); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrRefreshInvalid
		}
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ?`, oldHash); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)`,
		dinerID, newHash, expires); err != nil {
		return 0, err
	}
	return dinerID, tx.Commit()
}

// RevokeByHash revokes a single token, for logout with a body token.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = NOW()
	           WHERE token_hash = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}

// RevokeAllForUser revokes every live token a diner holds, for
// logout-everywhere and for admin account removal.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, dinerID uint64) error {
	const q = `UPDATE refresh_tokens SET revoked_at = NOW()
	           WHERE user_id = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, dinerID)
	return err
}
