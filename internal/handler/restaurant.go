package handler

import (
	"context"      // request-scoped timeouts
	"errors"       // sentinel comparisons with errors.Is
	"net/http"     // HTTP status codes
	"strings"      // trimming input
	"time"         // timeout durations

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirabdullahi/Dinemate/internal/config"
	"github.com/amirabdullahi/Dinemate/internal/mailer"     // outbound mail capability
	"github.com/amirabdullahi/Dinemate/internal/middleware" // role constants
	"github.com/amirabdullahi/Dinemate/internal/model"
	"github.com/amirabdullahi/Dinemate/internal/repository"
	"github.com/amirabdullahi/Dinemate/internal/utils"
)

// RestaurantHandler bundles the dependencies for restaurant-facing
// endpoints: registration, login, profile, reservations and menu
// management.  Restaurant accounts authenticate with an access token
// only; they do not get refresh tokens.
type RestaurantHandler struct {
	Cfg          config.Config
	Restaurants  *repository.RestaurantRepo
	Reservations *repository.ReservationRepo
	Menu         *repository.MenuRepo
	Areas        *repository.SittingAreaRepo
	Analytics    *repository.AnalyticsRepo
	Activities   *repository.ActivityRepo
	Mail         mailer.Mailer // nil disables password-reset mail

	// InvalidateBrowse drops the cached diner-facing listings after a
	// profile, menu or sitting-area write.  Nil when caching is off.
	InvalidateBrowse func(context.Context)
}

func NewRestaurantHandler(cfg config.Config, r *repository.RestaurantRepo, res *repository.ReservationRepo, m *repository.MenuRepo, a *repository.SittingAreaRepo, an *repository.AnalyticsRepo, act *repository.ActivityRepo, mail mailer.Mailer) *RestaurantHandler {
	if r == nil || res == nil || m == nil || a == nil || an == nil {
		panic("nil repository passed to NewRestaurantHandler")
	}
	return &RestaurantHandler{Cfg: cfg, Restaurants: r, Reservations: res, Menu: m, Areas: a, Analytics: an, Activities: act, Mail: mail}
}

// restaurantRegisterReq is the body of POST /v1/restaurant/register.
type restaurantRegisterReq struct {
	Name            string `json:"name"`
	CuisineType     string `json:"cuisine_type"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	OpenTime        string `json:"open_time"`
	CloseTime       string `json:"close_time"`
	MpesaNumber     string `json:"mpesa_number"`
	InitialCapacity uint32 `json:"initial_capacity"`
	Image           string `json:"image"`
}

// Register handles POST /v1/restaurant/register.  The restaurant is
// created in the pending state; login is only possible after the
// admin approves it, at which point a temporary password is e-mailed.
func (h *RestaurantHandler) Register(c echo.Context) error {
	var req restaurantRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.InitialCapacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/initial_capacity required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rst := &model.Restaurant{
		Name:            req.Name,
		CuisineType:     req.CuisineType,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           req.Email,
		OpenTime:        req.OpenTime,
		CloseTime:       req.CloseTime,
		MpesaNumber:     req.MpesaNumber,
		ApprovalStatus:  model.ApprovalPending,
		CurrentCapacity: req.InitialCapacity,
		InitialCapacity: req.InitialCapacity,
		Image:           req.Image,
		LastReset:       time.Now().UTC(),
	}
	id, err := h.Restaurants.Create(ctx, rst)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}

	if h.Activities != nil {
		_ = h.Activities.Log(ctx, req.Name, "Applied to join the platform")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":              id,
		"name":            req.Name,
		"approval_status": model.ApprovalPending,
		"message":         "registration received, pending admin approval",
	})
}

// Login handles POST /v1/restaurant/login.  Pending and declined
// restaurants cannot log in regardless of the password.
func (h *RestaurantHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rst, err := h.Restaurants.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if rst.ApprovalStatus != model.ApprovalAccepted {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "restaurant is not approved"})
	}
	if !utils.VerifyPassword(rst.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, rst.ID, middleware.RoleRestaurant, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"restaurant": echo.Map{"id": rst.ID, "name": rst.Name, "email": rst.Email},
		"access":     tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout handles POST /v1/restaurant/logout.  Restaurant sessions
// carry no refresh token, so there is nothing to revoke server side;
// the client discards the access token and it expires on its own.
func (h *RestaurantHandler) Logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// restaurantProfileReq mirrors repository.ProfileUpdate: nil fields
// are left untouched, and only these fields can ever be written.
type restaurantProfileReq struct {
	Name        *string `json:"name"`
	CuisineType *string `json:"cuisine_type"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	OpenTime    *string `json:"open_time"`
	CloseTime   *string `json:"close_time"`
	MpesaNumber *string `json:"mpesa_number"`
	Image       *string `json:"image"`
	Password    *string `json:"password"`
}

// UpdateProfile handles PATCH /v1/restaurant/profile.
func (h *RestaurantHandler) UpdateProfile(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req restaurantProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	upd := repository.ProfileUpdate{
		Name:        req.Name,
		CuisineType: req.CuisineType,
		Address:     req.Address,
		Phone:       req.Phone,
		OpenTime:    req.OpenTime,
		CloseTime:   req.CloseTime,
		MpesaNumber: req.MpesaNumber,
		Image:       req.Image,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
		}
		upd.PasswordHash = &hash
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Restaurants.UpdateProfile(ctx, rid, upd); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}

	h.dropBrowseCache(ctx)

	rst, err := h.Restaurants.GetByID(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load restaurant failed"})
	}
	return c.JSON(http.StatusOK, toRestaurantView(rst))
}

// dropBrowseCache orphans cached diner listings after a write.
func (h *RestaurantHandler) dropBrowseCache(ctx context.Context) {
	if h.InvalidateBrowse != nil {
		h.InvalidateBrowse(ctx)
	}
}

// GetProfile handles GET /v1/restaurant/profile.
func (h *RestaurantHandler) GetProfile(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rst, err := h.Restaurants.GetByID(ctx, rid)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load restaurant failed"})
	}
	view := toRestaurantView(rst)
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant":      view,
		"email":           rst.Email,
		"mpesa_number":    rst.MpesaNumber,
		"approval_status": rst.ApprovalStatus,
		"last_reset":      rst.LastReset,
	})
}

// ListReservations handles GET /v1/restaurant/reservations with an
// optional ?status= filter.
func (h *RestaurantHandler) ListReservations(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status := c.QueryParam("status")
	switch status {
	case "", model.ReservationPending, model.ReservationConfirmed, model.ReservationPayed, model.ReservationNoShow:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByRestaurant(ctx, rid, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	views := make([]reservationView, 0, len(list))
	for i := range list {
		views = append(views, toReservationView(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// UpdateReservationStatus handles PATCH /v1/restaurant/reservations/:id.
// A restaurant can only mark its own reservations, and only as
// confirmed or no-show; payment states belong to the reconciler.
func (h *RestaurantHandler) UpdateReservationStatus(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.ReservationConfirmed && req.Status != model.ReservationNoShow {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be confirmed or no-show"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservation failed"})
	}
	if res.RestaurantID != rid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Reservations.UpdateStatus(ctx, id, req.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// ----- password reset -----

// ForgotPassword handles POST /v1/restaurant/forgot-password.  Works
// like the diner flow but against the restaurants table.
func (h *RestaurantHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	if h.Mail == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "mail is not configured"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	rst, err := h.Restaurants.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	token, err := utils.NewResetToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue reset token failed"})
	}
	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := h.Restaurants.SetResetToken(ctx, req.Email, utils.HashToken(token), expires); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store reset token failed"})
	}

	resetURL := h.Cfg.FrontendBaseURL + "/resetpassword?token=" + token + "&route=restaurant"
	if err := h.Mail.SendPasswordReset(ctx, rst.Email, rst.Name, resetURL); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send reset mail failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset link sent to your email"})
}

// ResetPassword handles POST /v1/restaurant/reset-password.
func (h *RestaurantHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/new_password required"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Restaurants.ResetPassword(ctx, utils.HashToken(req.Token), hash, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrResetInvalid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset password failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}
