package handler

import (
	"context"      // request-scoped timeouts
	"net/http"     // HTTP status codes
	"strings"      // key normalization
	"time"         // timeout durations

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirabdullahi/Dinemate/internal/model"
	"github.com/amirabdullahi/Dinemate/internal/repository"
)

// menuItemReq is the body for creating a menu item.
type menuItemReq struct {
	Name        string   `json:"name"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ItemType    string   `json:"item_type"`
	Ingredients []string `json:"ingredients"`
}

func validItemType(t string) bool {
	switch t {
	case model.ItemTypeMainCourse, model.ItemTypeAppetizer, model.ItemTypeStarter, model.ItemTypeDessert:
		return true
	}
	return false
}

// CreateMenuItem handles POST /v1/restaurant/menu.
func (h *RestaurantHandler) CreateMenuItem(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Price <= 0 || !validItemType(req.ItemType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, positive price and a valid item_type are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item := &model.MenuItem{
		RestaurantID: rid,
		Name:         req.Name,
		Image:        req.Image,
		Description:  req.Description,
		Price:        req.Price,
		ItemType:     req.ItemType,
		Status:       "active",
		Ingredients:  req.Ingredients,
	}
	if err := h.Menu.Create(ctx, item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create item failed"})
	}
	h.dropBrowseCache(ctx)
	return c.JSON(http.StatusCreated, item)
}

// ListMenu handles GET /v1/restaurant/menu.
func (h *RestaurantHandler) ListMenu(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Menu.ListByRestaurant(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list menu failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"menu": items})
}

// menuItemUpdateReq mirrors repository.ItemUpdate: nil fields are left
// untouched.  Clients can never write columns outside this list.
type menuItemUpdateReq struct {
	Name        *string   `json:"name"`
	Image       *string   `json:"image"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	ItemType    *string   `json:"item_type"`
	Status      *string   `json:"status"`
	Ingredients *[]string `json:"ingredients"`
}

// UpdateMenuItem handles PATCH /v1/restaurant/menu/:id.
func (h *RestaurantHandler) UpdateMenuItem(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req menuItemUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ItemType != nil && !validItemType(*req.ItemType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item_type"})
	}
	if req.Status != nil && *req.Status != "active" && *req.Status != "inactive" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active or inactive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Menu.Update(ctx, id, rid, repository.ItemUpdate{
		Name:        req.Name,
		Image:       req.Image,
		Description: req.Description,
		Price:       req.Price,
		ItemType:    req.ItemType,
		Status:      req.Status,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		switch err {
		case repository.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update item failed"})
	}
	h.dropBrowseCache(ctx)
	return c.JSON(http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /v1/restaurant/menu/:id.
func (h *RestaurantHandler) DeleteMenuItem(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menu.Delete(ctx, id, rid); err != nil {
		switch err {
		case repository.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete item failed"})
	}
	h.dropBrowseCache(ctx)
	return c.NoContent(http.StatusNoContent)
}

// sittingAreaReq is the body for adding a sitting area.
type sittingAreaReq struct {
	AreaKey     string  `json:"area_key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	IconType    string  `json:"icon_type"`
}

// ListSittingAreas handles GET /v1/restaurant/sitting-areas.  Returns
// the global areas plus this restaurant's own.
func (h *RestaurantHandler) ListSittingAreas(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	areas, err := h.Areas.ListForRestaurant(ctx, rid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list sitting areas failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sitting_areas": areas})
}

// AddSittingArea handles POST /v1/restaurant/sitting-areas.  The key
// must be unique among global areas and this restaurant's own.
func (h *RestaurantHandler) AddSittingArea(c echo.Context) error {
	rid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sittingAreaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.AreaKey = strings.ToLower(strings.TrimSpace(req.AreaKey))
	if req.AreaKey == "" || req.Name == "" || req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "area_key, name and a non-negative price are required"})
	}
	if req.IconType == "" {
		req.IconType = "table"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	area := &model.SittingArea{
		AreaKey:      req.AreaKey,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		IconType:     req.IconType,
		Active:       true,
		RestaurantID: &rid,
	}
	if err := h.Areas.Create(ctx, area); err != nil {
		if err == repository.ErrAreaExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "area key already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create sitting area failed"})
	}
	h.dropBrowseCache(ctx)
	return c.JSON(http.StatusCreated, area)
}
