package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirabdullahi/Dinemate/internal/config"
	"github.com/amirabdullahi/Dinemate/internal/repository"
)

// recordingMailer captures outbound mail instead of talking to SMTP.
type recordingMailer struct {
	resetTo  string
	resetURL string
}

func (m *recordingMailer) SendApprovalDecision(ctx context.Context, to, restaurantName, status, tempPassword string) error {
	return nil
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	m.resetTo = to
	m.resetURL = resetURL
	return nil
}

func authHandlerOver(db *sql.DB, m *recordingMailer) *AuthHandler {
	return NewAuthHandler(config.Config{FrontendBaseURL: "http://localhost:41841"},
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		repository.NewActivityRepo(db),
		m)
}

func TestForgotPassword_UnknownEmailReturns404(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	h := authHandlerOver(db, &recordingMailer{})
	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"nobody@example.com"}`)

	require.NoError(t, h.ForgotPassword(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestForgotPassword_NoMailerReturns503(t *testing.T) {
	db, _ := mockDB(t)

	h := NewAuthHandler(config.Config{},
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		repository.NewActivityRepo(db),
		nil)
	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"diner@example.com"}`)

	require.NoError(t, h.ForgotPassword(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestForgotPassword_SendsTokenLink(t *testing.T) {
	db, mock := mockDB(t)
	rows := sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "age", "phone_number",
		"password_hash", "dining_preferences", "profile_picture", "online", "registered_at"}).
		AddRow(7, "Asha", "Omar", "asha@example.com", 28, "0712000000",
			"x", "", "", false, time.Now())
	mock.ExpectQuery("SELECT").WillReturnRows(rows)
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))

	m := &recordingMailer{}
	h := authHandlerOver(db, m)
	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"asha@example.com"}`)

	require.NoError(t, h.ForgotPassword(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha@example.com", m.resetTo)
	assert.Contains(t, m.resetURL, "/resetpassword?token=")
	assert.Contains(t, m.resetURL, "&route=user")
}

func TestResetPassword_BadTokenReturns400(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

	h := authHandlerOver(db, &recordingMailer{})
	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/reset-password",
		`{"token":"deadbeef","new_password":"newsecret1"}`)

	require.NoError(t, h.ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestRestaurantResetPassword_BadTokenReturns400(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec("UPDATE restaurants").WillReturnResult(sqlmock.NewResult(0, 0))

	h := NewRestaurantHandler(config.Config{},
		repository.NewRestaurantRepo(db),
		repository.NewReservationRepo(db),
		repository.NewMenuRepo(db),
		repository.NewSittingAreaRepo(db),
		repository.NewAnalyticsRepo(db),
		repository.NewActivityRepo(db),
		&recordingMailer{})
	c, rec := jsonContext(t, http.MethodPost, "/v1/restaurant/reset-password",
		`{"token":"deadbeef","new_password":"newsecret1"}`)

	require.NoError(t, h.ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}
