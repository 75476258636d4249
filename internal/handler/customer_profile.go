package handler

import (
	"context"  // request-scoped timeouts
	"net/http" // HTTP status codes
	"strings"  // trimming input
	"time"     // timeout durations

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirabdullahi/Dinemate/internal/mpesa"
	"github.com/amirabdullahi/Dinemate/internal/utils"
)

// profileUpdateReq carries the fields a diner may change.  Empty
// fields are left untouched.
type profileUpdateReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UpdateProfile handles PATCH /v1/profile.  Only name, email and
// password can change through this endpoint.
func (h *CustomerHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
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
	if err := h.Users.UpdateProfile(ctx, userID, req.FirstName, req.LastName, email, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
	})
}

// ListMpesaNumbers handles GET /v1/mpesa-numbers.  Numbers accumulate
// automatically as the diner pays with them.
func (h *CustomerHandler) ListMpesaNumbers(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	nums, err := h.Users.MpesaNumbers(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list numbers failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"mpesa_numbers": nums})
}

// AddMpesaNumber handles POST /v1/mpesa-numbers.  The number is
// normalized to 254 format before storing; duplicates are ignored.
func (h *CustomerHandler) AddMpesaNumber(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Phone) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	phone := mpesa.NormalizePhone(strings.TrimSpace(req.Phone))
	if err := h.Users.AddMpesaNumber(ctx, userID, phone); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save number failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"phone": phone})
}

// AddFavourite handles POST /v1/favourites.  Adding an existing
// favourite is a no-op 200 rather than an error.
func (h *CustomerHandler) AddFavourite(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		RestaurantID uint64 `json:"restaurant_id"`
	}
	if err := c.Bind(&req); err != nil || req.RestaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Restaurants.GetByID(ctx, req.RestaurantID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}
	added, err := h.Users.AddFavourite(ctx, userID, req.RestaurantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save favourite failed"})
	}
	if !added {
		return c.JSON(http.StatusOK, echo.Map{"message": "already a favourite"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"restaurant_id": req.RestaurantID})
}

// ListFavourites handles GET /v1/favourites.
func (h *CustomerHandler) ListFavourites(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Users.FavouriteIDs(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list favourites failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favourites": ids})
}

// Recommendations handles GET /v1/recommendations.  Suggestions are
// regenerated at most once every 24 hours per user; within the window
// the cached set is served.
func (h *CustomerHandler) Recommendations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.Recommender == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "recommendations are not enabled"})
	}

	// Generation calls an external model; allow a generous timeout.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	rec, err := h.Recommender.ForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate recommendations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"based_on_favourites": rec.BasedOnFavourites,
		"new_to_you":          rec.NewToYou,
		"generated_at":        rec.CreatedAt,
	})
}
