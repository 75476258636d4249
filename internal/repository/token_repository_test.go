package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenRepoOverMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestValidateRefresh_UnknownTokenIsInvalid(t *testing.T) {
	repo, mock := tokenRepoOverMock(t)
	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").WillReturnError(sql.ErrNoRows)

	_, err := repo.ValidateRefresh(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRotate_RevokesOldAndStoresNew(t *testing.T) {
	repo, mock := tokenRepoOverMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(42))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	dinerID, err := repo.Rotate(context.Background(), "oldhash", "newhash",
		time.Now().UTC().Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), dinerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotate_RevokedTokenRollsBack(t *testing.T) {
	repo, mock := tokenRepoOverMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Rotate(context.Background(), "revoked", "newhash",
		time.Now().UTC().Add(24*time.Hour))
	assert.ErrorIs(t, err, ErrRefreshInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
