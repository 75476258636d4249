package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirabdullahi/Dinemate/internal/booking"
	"github.com/amirabdullahi/Dinemate/internal/config"
	"github.com/amirabdullahi/Dinemate/internal/repository"
)

// The repositories translate sql.ErrNoRows into their own sentinels,
// so the handlers must compare against those sentinels for a missing
// row to surface as 404 (or 401 on login) instead of 500.

func mockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func jsonContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func customerHandlerOver(db *sql.DB) *CustomerHandler {
	return NewCustomerHandler(config.Config{},
		repository.NewUserRepo(db),
		repository.NewRestaurantRepo(db),
		repository.NewMenuRepo(db),
		repository.NewSittingAreaRepo(db),
		repository.NewReservationRepo(db),
		repository.NewPaymentRepo(db),
		&booking.Service{},
		nil)
}

func TestGetRestaurant_MissingRestaurantReturns404(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	h := customerHandlerOver(db)
	c, rec := jsonContext(t, http.MethodGet, "/v1/restaurants/999", "")
	c.SetParamNames("id")
	c.SetParamValues("999")

	require.NoError(t, h.GetRestaurant(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "restaurant not found")
}

func TestGetReservation_MissingReservationReturns404(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	h := customerHandlerOver(db)
	c, rec := jsonContext(t, http.MethodGet, "/v1/reservations/999", "")
	c.Set("user_id", float64(7))
	c.SetParamNames("id")
	c.SetParamValues("999")

	require.NoError(t, h.GetReservation(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "reservation not found")
}

func TestRestaurantLogin_UnknownEmailReturns401(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	h := NewRestaurantHandler(config.Config{},
		repository.NewRestaurantRepo(db),
		repository.NewReservationRepo(db),
		repository.NewMenuRepo(db),
		repository.NewSittingAreaRepo(db),
		repository.NewAnalyticsRepo(db),
		repository.NewActivityRepo(db),
		nil)
	c, rec := jsonContext(t, http.MethodPost, "/v1/restaurant/login",
		`{"email":"nobody@example.com","password":"pw"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestAdminGetUser_MissingUserReturns404(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

	h := NewAdminHandler(config.Config{},
		repository.NewUserRepo(db),
		repository.NewRestaurantRepo(db),
		repository.NewReservationRepo(db),
		repository.NewPaymentRepo(db),
		repository.NewAnalyticsRepo(db),
		repository.NewActivityRepo(db),
		nil)
	c, rec := jsonContext(t, http.MethodGet, "/v1/admin/users/999", "")
	c.SetParamNames("id")
	c.SetParamValues("999")

	require.NoError(t, h.GetUser(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}
