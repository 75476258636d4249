package handler

import (
	"context"      // request-scoped timeouts
	"crypto/subtle" // constant-time credential comparison
	"errors"       // sentinel comparisons with errors.Is
	"log"          // reporting background mail failures
	"net/http"     // HTTP status codes
	"strconv"      // parsing query parameters
	"strings"      // trimming input
	"time"         // timeout durations

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirabdullahi/Dinemate/internal/config"
	"github.com/amirabdullahi/Dinemate/internal/mailer"
	"github.com/amirabdullahi/Dinemate/internal/middleware" // role constants
	"github.com/amirabdullahi/Dinemate/internal/model"
	"github.com/amirabdullahi/Dinemate/internal/repository"
	"github.com/amirabdullahi/Dinemate/internal/utils"
)

// AdminHandler bundles dependencies for the platform admin dashboard.
// The admin is a single account configured through the environment,
// not a database row.
type AdminHandler struct {
	Cfg          config.Config
	Users        *repository.UserRepo
	Restaurants  *repository.RestaurantRepo
	Reservations *repository.ReservationRepo
	Payments     *repository.PaymentRepo
	Analytics    *repository.AnalyticsRepo
	Activities   *repository.ActivityRepo
	Mail         mailer.Mailer // nil when outbound mail is disabled
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, r *repository.RestaurantRepo, res *repository.ReservationRepo, p *repository.PaymentRepo, an *repository.AnalyticsRepo, act *repository.ActivityRepo, m mailer.Mailer) *AdminHandler {
	if u == nil || r == nil || res == nil || p == nil || an == nil || act == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Users: u, Restaurants: r, Reservations: res, Payments: p, Analytics: an, Activities: act, Mail: m}
}

// Login handles POST /v1/admin/login against the configured
// credentials.  The admin token carries subject 0.
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(h.Cfg.AdminEmail))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.Cfg.AdminPassword)) == 1
	if !emailOK || !passOK {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, 0, middleware.RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// ListRestaurants handles GET /v1/admin/restaurants.  Unlike the diner
// browse, this includes pending and declined venues.
func (h *AdminHandler) ListRestaurants(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Restaurants.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list restaurants failed"})
	}

	out := make([]echo.Map, 0, len(list))
	for i := range list {
		r := &list[i]
		out = append(out, echo.Map{
			"id":               r.ID,
			"name":             r.Name,
			"cuisine_type":     r.CuisineType,
			"address":          r.Address,
			"email":            r.Email,
			"phone":            r.Phone,
			"approval_status":  r.ApprovalStatus,
			"current_capacity": r.CurrentCapacity,
			"initial_capacity": r.InitialCapacity,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurants": out})
}

// Decide handles PATCH /v1/admin/restaurants/:id.  Accepting a
// restaurant generates a temporary password and e-mails it; declining
// just records the status.  Mail is sent in the background so a slow
// SMTP relay never blocks the dashboard.
func (h *AdminHandler) Decide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.ApprovalAccepted && req.Status != model.ApprovalDeclined {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be accepted or declined"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rst, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load restaurant failed"})
	}

	tempPassword := ""
	passwordHash := rst.PasswordHash
	if req.Status == model.ApprovalAccepted {
		tempPassword, err = utils.NewTempPassword()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate password failed"})
		}
		passwordHash, err = utils.HashPassword(tempPassword, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
		}
	}

	if err := h.Restaurants.SetApproval(ctx, id, req.Status, passwordHash); err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update approval failed"})
	}

	_ = h.Activities.Log(ctx, "Admin", "Marked restaurant "+rst.Name+" as "+req.Status)

	if h.Mail != nil {
		go func(to, name, status, pass string) {
			mctx, mcancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer mcancel()
			if err := h.Mail.SendApprovalDecision(mctx, to, name, status, pass); err != nil {
				log.Printf("admin: approval mail to %s failed: %v", to, err)
			}
		}(rst.Email, rst.Name, req.Status, tempPassword)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":              id,
		"approval_status": req.Status,
	})
}

// RecentActivities handles GET /v1/admin/activities with an optional
// ?limit= parameter.
func (h *AdminHandler) RecentActivities(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Activities.Recent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list activities failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"activities": list})
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}

	out := make([]userPart, 0, len(list))
	for i := range list {
		u := &list[i]
		out = append(out, userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: middleware.RoleUser})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// GetUser handles GET /v1/admin/users/:id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":                 u.ID,
		"first_name":         u.FirstName,
		"last_name":          u.LastName,
		"email":              u.Email,
		"age":                u.Age,
		"phone_number":       u.PhoneNumber,
		"dining_preferences": u.DiningPreferences,
		"online":             u.Online,
		"registered_at":      u.RegisteredAt,
	})
}

// UpdateUser handles PATCH /v1/admin/users/:id.  Same allow-listed
// fields as the diner's own profile edit.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	hash := ""
	if req.Password != "" {
		hash, err = utils.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.Users.UpdateProfile(ctx, id, req.FirstName, req.LastName, email, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: middleware.RoleUser})
}

// DeleteUser handles DELETE /v1/admin/users/:id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}

	_ = h.Activities.Log(ctx, "Admin", "Deleted account of "+u.FullName())
	return c.NoContent(http.StatusNoContent)
}

// Dashboard handles GET /v1/admin/analytics.  Returns the platform
// headline numbers in a single payload.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	activeUsers, err := h.Users.CountOnline(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count users failed"})
	}
	restaurants, err := h.Restaurants.CountApproved(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count restaurants failed"})
	}
	reservations, err := h.Reservations.CountAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count reservations failed"})
	}
	confirmedPayments, err := h.Payments.CountConfirmed(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count payments failed"})
	}
	bookingRevenue, err := h.Analytics.BookingRevenue(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute booking revenue failed"})
	}
	preOrderRevenue, err := h.Analytics.PreOrderRevenue(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute pre-order revenue failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"active_users":           activeUsers,
		"registered_restaurants": restaurants,
		"total_reservations":     reservations,
		"confirmed_payments":     confirmedPayments,
		"booking_revenue":        bookingRevenue,
		"pre_order_revenue":      preOrderRevenue,
	})
}
